// Package summarizer produces the short document summary shown in the UI
// header. It plays no part in ranking.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"docsearch/internal/chunker"
	"docsearch/internal/domain"
)

// Frequency ranks sentences by normalized token frequency and returns the
// top ones in their original order.
type Frequency struct {
	tokenRe      *regexp.Regexp
	maxSentences int
}

func NewFrequency(maxSentences int) *Frequency {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	return &Frequency{
		tokenRe:      regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		maxSentences: maxSentences,
	}
}

// Summarize builds a summary from the paragraph chunks of the loaded
// document. Table rows are skipped; they read poorly as prose.
func (s *Frequency) Summarize(chunks []domain.Chunk) string {
	var sentences []string
	for _, c := range chunks {
		if c.SourceType != domain.SourceParagraph {
			continue
		}
		sentences = append(sentences, chunker.SplitSentences(c.Text)...)
	}
	if len(sentences) == 0 {
		return ""
	}

	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range s.tokens(sent) {
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k := range freq {
			freq[k] /= maxF
		}
	}

	type ranked struct {
		idx   int
		score float64
	}
	scores := make([]ranked, len(sentences))
	for i, sent := range sentences {
		toks := s.tokens(sent)
		score := 0.0
		for _, tok := range toks {
			score += freq[tok]
		}
		// Length normalization keeps long sentences from dominating.
		if len(toks) > 0 {
			score /= math.Sqrt(float64(len(toks)))
		}
		scores[i] = ranked{i, score}
	}
	sort.Slice(scores, func(a, b int) bool { return scores[a].score > scores[b].score })

	n := s.maxSentences
	if n > len(scores) {
		n = len(scores)
	}
	selected := make([]int, n)
	for i := 0; i < n; i++ {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]string, n)
	for i, idx := range selected {
		out[i] = strings.TrimSpace(sentences[idx])
	}
	return strings.Join(out, " ")
}

func (s *Frequency) tokens(text string) []string {
	return s.tokenRe.FindAllString(strings.ToLower(text), -1)
}
