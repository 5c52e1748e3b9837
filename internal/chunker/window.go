package chunker

import (
	"strings"
	"unicode"

	"docsearch/internal/domain"
)

// slidingWindow splits one long text unit into overlapping sentence windows.
// Every produced chunk keeps the parent's index and source type. Texts of at
// most windowSize sentences come back as a single chunk unchanged.
func (e *Extractor) slidingWindow(text string, index int, src domain.SourceType) []domain.Chunk {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}
	if len(sentences) <= e.windowSize {
		return []domain.Chunk{{Text: text, OriginalIndex: index, SourceType: src}}
	}

	stride := e.windowSize - e.overlap
	if stride < 1 {
		stride = 1
	}
	var chunks []domain.Chunk
	for i := 0; i < len(sentences); i += stride {
		end := i + e.windowSize
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, domain.Chunk{
			Text:          strings.Join(sentences[i:end], " "),
			OriginalIndex: index,
			SourceType:    src,
		})
		// The window covering the final sentence is the last one; a
		// shorter tail window is still emitted above so no trailing
		// content is dropped.
		if i+e.windowSize >= len(sentences) {
			break
		}
	}
	return chunks
}

// SplitSentences splits on '.', '!' or '?' followed by whitespace, keeping
// the terminator with its sentence. A trailing fragment without a
// terminator is kept as its own sentence. Empty fragments are dropped.
func SplitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	runes := []rune(text)
	flush := func() {
		s := strings.TrimSpace(b.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		b.Reset()
	}
	for i, r := range runes {
		b.WriteRune(r)
		if isTerminator(r) && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			flush()
		}
	}
	flush()
	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
