// Package registry is a minimal REST client for a hub-style model registry.
// It lists an artifact's files with their sizes, fetches individual files,
// and fetches a full snapshot archive when per-file recovery is impossible.
package registry

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docsearch/internal/domain"
)

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

type Config struct {
	BaseURL  string
	TokenEnv string
	Timeout  time.Duration
}

func NewClient(cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://huggingface.co"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	token := ""
	if cfg.TokenEnv != "" {
		token = os.Getenv(cfg.TokenEnv)
	}
	return &Client{
		baseURL: base,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// ListFiles returns the artifact manifest. Entries without a reported size
// get SizeUnknown; junk entries like .DS_Store are filtered out.
func (c *Client) ListFiles(ctx context.Context, artifactID string) ([]domain.ManifestEntry, error) {
	url := fmt.Sprintf("%s/api/models/%s", c.baseURL, artifactID)
	var out struct {
		Siblings []struct {
			RFilename string `json:"rfilename"`
			Size      *int64 `json:"size"`
		} `json:"siblings"`
	}
	if err := c.getJSON(ctx, url, &out); err != nil {
		return nil, err
	}
	entries := make([]domain.ManifestEntry, 0, len(out.Siblings))
	for _, s := range out.Siblings {
		if s.RFilename == "" || strings.HasSuffix(s.RFilename, ".DS_Store") {
			continue
		}
		size := domain.SizeUnknown
		if s.Size != nil {
			size = *s.Size
		}
		entries = append(entries, domain.ManifestEntry{Path: s.RFilename, Size: size})
	}
	return entries, nil
}

// FetchFile downloads one artifact file into destDir, preserving its
// relative path. The body streams into a temp name and is renamed into
// place only when complete, so an interrupted transfer never leaves a
// plausible file at the final path.
func (c *Client) FetchFile(ctx context.Context, artifactID, relPath, destDir string) error {
	url := fmt.Sprintf("%s/%s/resolve/main/%s", c.baseURL, artifactID, relPath)
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	dest, err := securePath(destDir, relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("download %s: %w", relPath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

// FetchSnapshot downloads the artifact's full snapshot archive (tar.gz)
// and unpacks it under destDir.
func (c *Client) FetchSnapshot(ctx context.Context, artifactID, destDir string) error {
	url := fmt.Sprintf("%s/api/models/%s/snapshot", c.baseURL, artifactID)
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", artifactID, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", artifactID, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if strings.HasSuffix(hdr.Name, ".DS_Store") {
			continue
		}
		dest, err := securePath(destDir, hdr.Name)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		f, err := os.Create(dest)
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, tr); err != nil {
			f.Close()
			return fmt.Errorf("snapshot %s: unpack %s: %w", artifactID, hdr.Name, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
}

// securePath joins rel under dir and rejects entries that would escape it.
func securePath(dir, rel string) (string, error) {
	dest := filepath.Join(dir, filepath.FromSlash(rel))
	cleanDir := filepath.Clean(dir)
	if dest != cleanDir && !strings.HasPrefix(dest, cleanDir+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal path %q escapes %q", rel, dir)
	}
	return dest, nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("registry GET %s failed: %s", url, resp.Status)
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("registry GET %s: decode: %w", url, err)
	}
	return nil
}
