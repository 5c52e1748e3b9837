// Package chunker turns parsed documents into fixed-granularity retrieval
// chunks with provenance back to the source paragraph or table row.
package chunker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"docsearch/internal/domain"
)

const cellSeparator = " | "

var whitespaceRe = regexp.MustCompile(`\s+`)

// Extractor emits paragraph chunks (window-split when too long) followed by
// one chunk per non-empty table row.
type Extractor struct {
	maxChars   int
	windowSize int
	overlap    int
}

// NewExtractor validates the chunking thresholds. overlap >= windowSize
// would make every window repeat its predecessor and is rejected.
func NewExtractor(maxChars, windowSize, overlap int) (*Extractor, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("%w: max_chars must be positive, got %d", domain.ErrInvalidConfiguration, maxChars)
	}
	if windowSize <= 0 {
		return nil, fmt.Errorf("%w: window_size must be positive, got %d", domain.ErrInvalidConfiguration, windowSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrInvalidConfiguration, overlap)
	}
	if overlap >= windowSize {
		return nil, fmt.Errorf("%w: overlap (%d) must be smaller than window_size (%d)", domain.ErrInvalidConfiguration, overlap, windowSize)
	}
	return &Extractor{maxChars: maxChars, windowSize: windowSize, overlap: overlap}, nil
}

// Chunk produces the document's chunks in order: paragraphs first, then
// table rows (table order, row order within a table).
func (e *Extractor) Chunk(doc *domain.Document) ([]domain.Chunk, error) {
	var chunks []domain.Chunk

	for i, para := range doc.Paragraphs {
		text := CleanText(para)
		if text == "" {
			continue
		}
		if utf8.RuneCountInString(text) > e.maxChars {
			chunks = append(chunks, e.slidingWindow(text, i, domain.SourceParagraph)...)
		} else {
			chunks = append(chunks, domain.Chunk{
				Text:          text,
				OriginalIndex: i,
				SourceType:    domain.SourceParagraph,
			})
		}
	}

	for ti, table := range doc.Tables {
		for ri, row := range table {
			cells := make([]string, len(row))
			for ci, cell := range row {
				cells[ci] = CleanText(cell)
			}
			// Empty cells are kept so column alignment survives.
			rowText := strings.Join(cells, cellSeparator)
			if strings.TrimSpace(strings.ReplaceAll(rowText, "|", "")) == "" {
				continue
			}
			chunks = append(chunks, domain.Chunk{
				Text:          rowText,
				OriginalIndex: ti,
				SourceType:    domain.SourceTable,
				Metadata:      map[string]int{domain.MetaRowIndex: ri},
			})
		}
	}

	return chunks, nil
}

// CleanText collapses whitespace runs to a single space and trims the ends.
// It is idempotent.
func CleanText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
