package rerank

import (
	"context"
	"math"
	"regexp"
	"strings"
)

// Lexical scores candidates by token overlap with the query using the
// Ochiai coefficient |Q∩C| / sqrt(|Q||C|). It is the offline fallback when
// no rerank endpoint is configured, and it is deterministic.
type Lexical struct {
	tokenRe *regexp.Regexp
}

func NewLexical() *Lexical {
	return &Lexical{tokenRe: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)}
}

func (l *Lexical) Name() string { return "lexical" }

func (l *Lexical) Score(_ context.Context, query string, candidates []string) ([]float64, error) {
	qset := l.tokenSet(query)
	scores := make([]float64, len(candidates))
	for i, cand := range candidates {
		scores[i] = l.ochiai(qset, cand)
	}
	return scores, nil
}

func (l *Lexical) ochiai(qset map[string]struct{}, text string) float64 {
	cset := l.tokenSet(text)
	if len(qset) == 0 || len(cset) == 0 {
		return 0
	}
	inter := 0
	for tok := range cset {
		if _, ok := qset[tok]; ok {
			inter++
		}
	}
	return float64(inter) / (math.Sqrt(float64(len(qset))) * math.Sqrt(float64(len(cset))))
}

func (l *Lexical) tokenSet(s string) map[string]struct{} {
	tokens := l.tokenRe.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
