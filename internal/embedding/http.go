// Package embedding provides Embedder implementations: an HTTP client for
// an OpenAI-compatible embeddings endpoint and an offline TF-IDF fallback.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// HTTPClient talks to an OpenAI-compatible /embeddings endpoint, typically
// a local inference server fronting the provisioned embedding model.
type HTTPClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

type HTTPConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewHTTPClient builds the client. The API key is optional: local
// inference servers usually run without one.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	base := cfg.BaseURL
	if base == "" {
		base = "http://localhost:8080"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	key := ""
	if cfg.APIKeyEnv != "" {
		key = os.Getenv(cfg.APIKeyEnv)
	}
	return &HTTPClient{
		baseURL: base,
		apiKey:  key,
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Name() string { return "http" }

// Prepare is a no-op: the remote model needs no corpus pass.
func (c *HTTPClient) Prepare(corpus []string) error { return nil }

// Encode embeds all texts in one batch request and returns the vectors in
// input order.
func (c *HTTPClient) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	reqBody := struct {
		Input []string `json:"input"`
		Model string   `json:"model,omitempty"`
	}{Input: texts, Model: c.model}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/embeddings", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embeddings request failed: %s", resp.Status)
	}
	var out struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings count mismatch: sent %d, got %d", len(texts), len(out.Data))
	}
	vectors := make([][]float64, len(texts))
	for _, d := range out.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embeddings response index %d out of range", d.Index)
		}
		if len(d.Embedding) == 0 {
			return nil, fmt.Errorf("empty embedding at index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("missing embedding for input %d", i)
		}
	}
	return vectors, nil
}
