package rerank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestHTTPScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rerank" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Query     string   `json:"query"`
			Documents []string `json:"documents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Query != "termination clause" || len(req.Documents) != 2 {
			t.Errorf("request = %+v", req)
		}
		// Results arrive ranked, not in input order; the client must
		// return scores positionally.
		w.Write([]byte(`{"results":[
			{"index":1,"relevance_score":0.93},
			{"index":0,"relevance_score":0.12}
		]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{BaseURL: srv.URL})
	scores, err := c.Score(context.Background(), "termination clause", []string{"doc a", "doc b"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if want := []float64{0.12, 0.93}; !reflect.DeepEqual(scores, want) {
		t.Errorf("scores = %v, want %v", scores, want)
	}
}

func TestHTTPScoreMissingCandidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"index":0,"relevance_score":0.5}]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{BaseURL: srv.URL})
	if _, err := c.Score(context.Background(), "q", []string{"a", "b"}); err == nil {
		t.Error("expected error when a candidate has no score")
	}
}

func TestHTTPScoreIndexOutOfRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"index":5,"relevance_score":0.5}]}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{BaseURL: srv.URL})
	if _, err := c.Score(context.Background(), "q", []string{"a"}); err == nil {
		t.Error("expected error on out-of-range index")
	}
}

func TestHTTPScoreNoCandidates(t *testing.T) {
	c := NewHTTPClient(HTTPConfig{BaseURL: "http://127.0.0.1:1"})
	scores, err := c.Score(context.Background(), "q", nil)
	if err != nil || scores != nil {
		t.Errorf("no candidates should short-circuit, got %v, %v", scores, err)
	}
}
