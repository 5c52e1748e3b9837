// Package index holds the in-memory embedding matrix for the currently
// loaded document and serves coarse nearest-neighbor retrieval over it.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"docsearch/internal/domain"
)

// Candidate is one coarse retrieval hit: a chunk position and its cosine
// similarity to the query.
type Candidate struct {
	Index int
	Score float64
}

// Index owns exactly one matrix of L2-normalized vectors, one row per
// chunk, in chunk order. Load replaces chunks and vectors wholesale; a
// partially loaded state is never observable.
type Index struct {
	mu       sync.RWMutex
	embedder domain.Embedder
	chunks   []domain.Chunk
	vectors  [][]float64
}

func New(embedder domain.Embedder) *Index {
	return &Index{embedder: embedder}
}

// Load encodes all chunk texts in one batch and swaps in the new state.
// An empty chunk list clears the index without error.
func (ix *Index) Load(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		ix.mu.Lock()
		ix.chunks = nil
		ix.vectors = nil
		ix.mu.Unlock()
		return nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	if err := ix.embedder.Prepare(texts); err != nil {
		return fmt.Errorf("prepare embedder: %w", err)
	}
	vectors, err := ix.embedder.Encode(ctx, texts)
	if err != nil {
		return fmt.Errorf("encode chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("encode chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
	}
	for _, v := range vectors {
		normalize(v)
	}
	ix.mu.Lock()
	ix.chunks = chunks
	ix.vectors = vectors
	ix.mu.Unlock()
	return nil
}

// Retrieve encodes the query with the same normalization and returns the k
// most similar chunk positions, k clamped to the stored chunk count.
// Ordering is deterministic: score descending, chunk position ascending on
// ties.
func (ix *Index) Retrieve(ctx context.Context, query string, k int) ([]Candidate, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if len(ix.vectors) == 0 || k <= 0 {
		return nil, nil
	}
	encoded, err := ix.embedder.Encode(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	if len(encoded) != 1 {
		return nil, fmt.Errorf("encode query: got %d vectors", len(encoded))
	}
	qv := encoded[0]
	normalize(qv)

	candidates := make([]Candidate, len(ix.vectors))
	for i, v := range ix.vectors {
		candidates[i] = Candidate{Index: i, Score: dot(v, qv)}
	}
	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].Score != candidates[b].Score {
			return candidates[a].Score > candidates[b].Score
		}
		return candidates[a].Index < candidates[b].Index
	})
	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[:k], nil
}

// Size returns the number of indexed chunks.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.chunks)
}

// Chunk returns the chunk at position i of the loaded document.
func (ix *Index) Chunk(i int) domain.Chunk {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.chunks[i]
}

func normalize(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] /= norm
	}
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
