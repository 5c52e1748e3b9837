package engine

import (
	"fmt"
	"sort"

	"docsearch/internal/domain"
)

// Fuse merges rerank scores into the coarse candidates and orders strictly
// by rerank score descending. The coarse similarity stays available as
// InitialScore but never influences the final order; ties fall back to
// coarse similarity and then to the original candidate order, keeping
// repeated searches byte-for-byte identical.
func Fuse(coarse []domain.SearchResult, rerankScores []float64) ([]domain.SearchResult, error) {
	if len(coarse) != len(rerankScores) {
		return nil, fmt.Errorf("fuse: %d candidates but %d rerank scores", len(coarse), len(rerankScores))
	}
	fused := make([]domain.SearchResult, len(coarse))
	copy(fused, coarse)
	for i := range fused {
		fused[i].Score = rerankScores[i]
	}
	sort.SliceStable(fused, func(a, b int) bool {
		if fused[a].Score != fused[b].Score {
			return fused[a].Score > fused[b].Score
		}
		return fused[a].InitialScore > fused[b].InitialScore
	})
	return fused, nil
}
