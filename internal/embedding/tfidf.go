package embedding

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// TFIDF is an offline vectorizer used when no inference server is
// configured. Prepare builds the vocabulary and IDF table from the loaded
// document's chunks; encoding is fully deterministic.
type TFIDF struct {
	vocabulary map[string]int
	idf        []float64
	dimension  int
	prepared   bool
	tokenRe    *regexp.Regexp
}

func NewTFIDF() *TFIDF {
	return &TFIDF{
		vocabulary: make(map[string]int),
		tokenRe:    regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
	}
}

func (e *TFIDF) Name() string { return "tfidf" }

// Prepare builds the term space over the corpus with smoothed IDF values.
func (e *TFIDF) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		e.vocabulary = make(map[string]int)
		e.idf = nil
		e.dimension = 0
		e.prepared = true
		return nil
	}
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range e.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	if len(terms) == 0 {
		return errors.New("no tokens found in corpus")
	}
	sort.Strings(terms)
	e.vocabulary = make(map[string]int, len(terms))
	e.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		e.vocabulary[term] = i
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	e.dimension = len(terms)
	e.prepared = true
	return nil
}

// Encode vectorizes each text over the prepared term space.
func (e *TFIDF) Encode(_ context.Context, texts []string) ([][]float64, error) {
	if !e.prepared {
		return nil, errors.New("tfidf embedder not prepared")
	}
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vectors[i] = e.embed(text)
	}
	return vectors, nil
}

func (e *TFIDF) embed(text string) []float64 {
	vec := make([]float64, e.dimension)
	tf := make(map[int]int)
	total := 0
	for _, tok := range e.tokenize(text) {
		if idx, ok := e.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * e.idf[idx]
	}
	return vec
}

func (e *TFIDF) tokenize(text string) []string {
	return e.tokenRe.FindAllString(strings.ToLower(text), -1)
}
