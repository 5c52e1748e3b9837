package summarizer

import (
	"strings"
	"testing"

	"docsearch/internal/domain"
)

func paragraphChunk(text string) domain.Chunk {
	return domain.Chunk{Text: text, SourceType: domain.SourceParagraph}
}

func TestSummarizePicksFrequentTopic(t *testing.T) {
	chunks := []domain.Chunk{
		paragraphChunk("The contract covers delivery terms. The contract also covers payment terms. " +
			"Weather was nice that day. The contract defines penalty terms."),
	}
	got := NewFrequency(2).Summarize(chunks)
	if !strings.Contains(got, "contract") {
		t.Errorf("summary %q misses the dominant topic", got)
	}
	if strings.Contains(got, "Weather") {
		t.Errorf("summary %q includes the off-topic sentence", got)
	}
}

func TestSummarizeKeepsOriginalOrder(t *testing.T) {
	chunks := []domain.Chunk{
		paragraphChunk("Alpha clause applies first. Bananas grow somewhere tropical. Alpha clause applies last."),
	}
	got := NewFrequency(2).Summarize(chunks)
	first := strings.Index(got, "first")
	last := strings.Index(got, "last")
	if first == -1 || last == -1 || first > last {
		t.Errorf("selected sentences out of document order: %q", got)
	}
}

func TestSummarizeSkipsTableChunks(t *testing.T) {
	chunks := []domain.Chunk{
		{Text: "Deposit | Two months", SourceType: domain.SourceTable},
		paragraphChunk("Only prose belongs here."),
	}
	got := NewFrequency(5).Summarize(chunks)
	if strings.Contains(got, "Deposit") {
		t.Errorf("table row leaked into summary: %q", got)
	}
	if got != "Only prose belongs here." {
		t.Errorf("summary = %q", got)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if got := NewFrequency(5).Summarize(nil); got != "" {
		t.Errorf("empty input produced %q", got)
	}
}
