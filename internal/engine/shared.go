package engine

import (
	"context"
	"sync"

	"docsearch/internal/config"
)

var (
	sharedMu sync.Mutex
	shared   *Engine
)

// GetOrCreate returns the process-wide engine, building it on first call.
// Model loading and provisioning are expensive, so the instance is shared
// across all load and search calls in the process. A failed build is not
// cached; the next call retries.
func GetOrCreate(ctx context.Context, cfg *config.AppConfig) (*Engine, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared != nil {
		return shared, nil
	}
	e, err := Build(ctx, cfg)
	if err != nil {
		return nil, err
	}
	shared = e
	return shared, nil
}

// Reset discards the shared engine so the next GetOrCreate builds a fresh
// one. Intended for teardown in tests.
func Reset() {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	shared = nil
}
