// Package engine orchestrates document loading and two-stage search:
// coarse vector retrieval over the embedding index followed by pairwise
// reranking, with the reranker's order winning outright.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"docsearch/internal/domain"
	"docsearch/internal/index"
)

// Engine serves load and search over one document at a time. It starts
// empty; searching before a document is loaded returns an empty result set
// rather than an error. Loads are serialized against concurrent searches.
type Engine struct {
	mu          sync.RWMutex
	source      domain.Source
	chunker     domain.Chunker
	index       *index.Index
	reranker    domain.Reranker
	coarseFloor int
}

func New(source domain.Source, chunker domain.Chunker, ix *index.Index, reranker domain.Reranker, coarseFloor int) *Engine {
	if coarseFloor < 1 {
		coarseFloor = 10
	}
	return &Engine{
		source:      source,
		chunker:     chunker,
		index:       ix,
		reranker:    reranker,
		coarseFloor: coarseFloor,
	}
}

// LoadDocument chunks the document at path and replaces the index contents
// wholesale. It returns the number of chunks indexed. Failures name the
// file.
func (e *Engine) LoadDocument(ctx context.Context, path string) (int, error) {
	doc, err := e.source.Read(path)
	if err != nil {
		return 0, err
	}
	chunks, err := e.chunker.Chunk(doc)
	if err != nil {
		return 0, fmt.Errorf("chunk %s: %w", path, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.index.Load(ctx, chunks); err != nil {
		return 0, fmt.Errorf("index %s: %w", path, err)
	}
	return len(chunks), nil
}

// Search runs the two-stage pipeline. The coarse stage retrieves
// max(topK, coarseFloor) candidates so the reranker has room to reorder;
// the rerank stage rescores them all and its ordering replaces the coarse
// one. topK <= 0 and an unloaded engine both yield an empty result set.
func (e *Engine) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("empty query")
	}
	if topK <= 0 {
		return nil, nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.index.Size() == 0 {
		return nil, nil
	}

	retrieveK := topK
	if retrieveK < e.coarseFloor {
		retrieveK = e.coarseFloor
	}
	candidates, err := e.index.Retrieve(ctx, query, retrieveK)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	coarse := make([]domain.SearchResult, len(candidates))
	texts := make([]string, len(candidates))
	for i, c := range candidates {
		chunk := e.index.Chunk(c.Index)
		coarse[i] = domain.SearchResult{Chunk: chunk, InitialScore: c.Score}
		texts[i] = chunk.Text
	}
	scores, err := e.reranker.Score(ctx, query, texts)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	results, err := Fuse(coarse, scores)
	if err != nil {
		return nil, err
	}
	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Loaded reports whether a document is currently indexed.
func (e *Engine) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.index.Size() > 0
}

// Chunks returns a snapshot of the loaded document's chunks, in order.
func (e *Engine) Chunks() []domain.Chunk {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]domain.Chunk, e.index.Size())
	for i := range out {
		out[i] = e.index.Chunk(i)
	}
	return out
}
