// Package rerank provides Reranker implementations: an HTTP client for a
// pairwise /rerank endpoint and an offline lexical-overlap fallback.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// HTTPClient talks to a /rerank endpoint serving a pairwise scoring model.
// Scores come back raw, on the model's own scale.
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

// Score reranks all candidates against the query in one request and
// returns one relevance score per candidate, in input order.
func (c *HTTPClient) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	reqBody := struct {
		Model     string   `json:"model,omitempty"`
		Query     string   `json:"query"`
		Documents []string `json:"documents"`
	}{Model: c.model, Query: query, Documents: candidates}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/rerank", c.baseURL)
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
		return nil, fmt.Errorf("rerank request failed: %s", resp.Status)
	}
	var out struct {
		Results []struct {
			Index          int     `json:"index"`
			RelevanceScore float64 `json:"relevance_score"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Results) != len(candidates) {
		return nil, fmt.Errorf("rerank count mismatch: sent %d, got %d", len(candidates), len(out.Results))
	}
	scores := make([]float64, len(candidates))
	seen := make([]bool, len(candidates))
	for _, r := range out.Results {
		if r.Index < 0 || r.Index >= len(scores) {
			return nil, fmt.Errorf("rerank response index %d out of range", r.Index)
		}
		scores[r.Index] = r.RelevanceScore
		seen[r.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("missing rerank score for candidate %d", i)
		}
	}
	return scores, nil
}
