package domain

import "errors"

var (
	// ErrFileNotFound reports a missing input document path.
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedFormat reports a legacy document format with no parser.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrInvalidConfiguration reports inconsistent chunking or search
	// parameters, e.g. overlap >= window size.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrProvisioningFailed reports that artifact recovery could not
	// complete. Files already fetched stay on disk; a retry resumes.
	ErrProvisioningFailed = errors.New("artifact provisioning failed")

	// ErrModelLoadFailed is fatal at startup: a model provider cannot
	// serve requests and the engine refuses to initialize.
	ErrModelLoadFailed = errors.New("model load failed")
)
