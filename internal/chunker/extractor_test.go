package chunker

import (
	"errors"
	"strings"
	"testing"

	"docsearch/internal/domain"
)

func mustExtractor(t *testing.T, maxChars, windowSize, overlap int) *Extractor {
	t.Helper()
	e, err := NewExtractor(maxChars, windowSize, overlap)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	return e
}

func TestCleanText(t *testing.T) {
	got := CleanText("  Hello   World!  \n  ")
	if got != "Hello World!" {
		t.Errorf("CleanText = %q, want %q", got, "Hello World!")
	}
}

func TestCleanTextIdempotent(t *testing.T) {
	inputs := []string{"  a\t\tb ", "already clean", "", "\n\n", "x  y\r\nz"}
	for _, in := range inputs {
		once := CleanText(in)
		twice := CleanText(once)
		if once != twice {
			t.Errorf("CleanText not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNewExtractorRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name                          string
		maxChars, windowSize, overlap int
	}{
		{"overlap equals window", 400, 4, 4},
		{"overlap exceeds window", 400, 2, 3},
		{"negative overlap", 400, 4, -1},
		{"zero max chars", 0, 4, 1},
		{"zero window", 400, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewExtractor(tc.maxChars, tc.windowSize, tc.overlap)
			if !errors.Is(err, domain.ErrInvalidConfiguration) {
				t.Errorf("got %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestChunkShortParagraph(t *testing.T) {
	e := mustExtractor(t, 400, 4, 1)
	doc := &domain.Document{Paragraphs: []string{"", "  Hello   there.  ", ""}}
	chunks, err := e.Chunk(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	c := chunks[0]
	if c.Text != "Hello there." {
		t.Errorf("text = %q", c.Text)
	}
	if c.OriginalIndex != 1 || c.SourceType != domain.SourceParagraph {
		t.Errorf("provenance = %d/%s, want 1/paragraph", c.OriginalIndex, c.SourceType)
	}
}

func TestChunkLongParagraphWindows(t *testing.T) {
	// Four sentences, well past maxChars, window 2 with overlap 1:
	// expect [S1 S2], [S2 S3], [S3 S4].
	s1 := "First sentence about delivery terms."
	s2 := "Second sentence about payment schedules."
	s3 := "Third sentence about liability caps."
	s4 := "Fourth sentence about termination rights."
	para := strings.Join([]string{s1, s2, s3, s4}, " ")
	e := mustExtractor(t, 20, 2, 1)

	chunks, err := e.Chunk(&domain.Document{Paragraphs: []string{para}})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	want := []string{s1 + " " + s2, s2 + " " + s3, s3 + " " + s4}
	for i, w := range want {
		if chunks[i].Text != w {
			t.Errorf("chunk %d = %q, want %q", i, chunks[i].Text, w)
		}
		if chunks[i].OriginalIndex != 0 || chunks[i].SourceType != domain.SourceParagraph {
			t.Errorf("chunk %d provenance = %d/%s", i, chunks[i].OriginalIndex, chunks[i].SourceType)
		}
	}
}

func TestChunkFewSentencesStayWhole(t *testing.T) {
	para := strings.Repeat("word ", 100) + "end. Second one."
	e := mustExtractor(t, 50, 4, 1)
	chunks, err := e.Chunk(&domain.Document{Paragraphs: []string{para}})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1 (sentence count <= window size)", len(chunks))
	}
	if chunks[0].Text != CleanText(para) {
		t.Errorf("whole text not preserved: %q", chunks[0].Text)
	}
}

func TestChunkTableRows(t *testing.T) {
	e := mustExtractor(t, 400, 4, 1)
	doc := &domain.Document{
		Paragraphs: []string{"Intro."},
		Tables: [][][]string{
			{
				{"Name", "", "Value"},
				{"  ", "", "  "},
				{"Fee", "USD", "100"},
			},
			{
				{"Only", "Row"},
			},
		},
	}
	chunks, err := e.Chunk(doc)
	if err != nil {
		t.Fatal(err)
	}
	// 1 paragraph + 2 non-empty rows from table 0 + 1 row from table 1.
	if len(chunks) != 4 {
		t.Fatalf("got %d chunks, want 4", len(chunks))
	}
	if chunks[0].SourceType != domain.SourceParagraph {
		t.Fatalf("paragraph chunks must come first")
	}

	row0 := chunks[1]
	if row0.Text != "Name |  | Value" {
		t.Errorf("row text = %q, want empty cell preserved", row0.Text)
	}
	if row0.OriginalIndex != 0 || row0.SourceType != domain.SourceTable {
		t.Errorf("row provenance = %d/%s", row0.OriginalIndex, row0.SourceType)
	}
	if row0.Metadata[domain.MetaRowIndex] != 0 {
		t.Errorf("row_index = %d, want 0", row0.Metadata[domain.MetaRowIndex])
	}

	row2 := chunks[2]
	if row2.Metadata[domain.MetaRowIndex] != 2 {
		t.Errorf("blank row must be skipped but keep source row numbering, got row_index %d", row2.Metadata[domain.MetaRowIndex])
	}

	other := chunks[3]
	if other.OriginalIndex != 1 || other.Metadata[domain.MetaRowIndex] != 0 {
		t.Errorf("second table provenance = table %d row %d", other.OriginalIndex, other.Metadata[domain.MetaRowIndex])
	}
}

func TestChunkEmptyDocument(t *testing.T) {
	e := mustExtractor(t, 400, 4, 1)
	chunks, err := e.Chunk(&domain.Document{})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 0 {
		t.Errorf("got %d chunks for empty document", len(chunks))
	}
}
