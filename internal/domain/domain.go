package domain

import "context"

// SourceType identifies which part of the source document a chunk came from.
type SourceType string

const (
	SourceParagraph SourceType = "paragraph"
	SourceTable     SourceType = "table"
)

// MetaRowIndex is the metadata key carrying a table chunk's row position.
const MetaRowIndex = "row_index"

// Document is a parsed source file: body paragraphs in document order and
// tables as ordered rows of cell texts.
type Document struct {
	Path       string
	Paragraphs []string
	Tables     [][][]string
}

// Chunk is an atomic retrieval unit. OriginalIndex and SourceType (plus
// Metadata[MetaRowIndex] for table rows) map the chunk back to its exact
// position in the source document; window-split siblings share them.
type Chunk struct {
	Text          string
	OriginalIndex int
	SourceType    SourceType
	Metadata      map[string]int
}

// SearchResult is one ranked hit. Score is the reranker output (raw model
// scale, not bounded); InitialScore is the coarse cosine similarity kept
// for diagnostics only.
type SearchResult struct {
	Chunk
	Score        float64
	InitialScore float64
}

// ManifestEntry describes one file of a remote model artifact.
// Size < 0 means the registry did not report a size.
type ManifestEntry struct {
	Path string
	Size int64
}

// SizeUnknown marks a manifest entry without a reported byte size.
const SizeUnknown int64 = -1

// Source reads a document from disk.
type Source interface {
	Read(path string) (*Document, error)
}

// Chunker splits a parsed document into retrieval chunks.
type Chunker interface {
	Chunk(doc *Document) ([]Chunk, error)
}

// Embedder converts texts into vector representations. Prepare is called
// once per corpus before encoding; remote embedders may treat it as a no-op.
// Encode must be deterministic for fixed inputs.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Encode(ctx context.Context, texts []string) ([][]float64, error)
}

// Reranker scores (query, candidate) pairs. It returns one score per
// candidate in input order and imposes no normalization on the model output.
type Reranker interface {
	Name() string
	Score(ctx context.Context, query string, candidates []string) ([]float64, error)
}

// Registry is a remote store of model artifacts.
type Registry interface {
	ListFiles(ctx context.Context, artifactID string) ([]ManifestEntry, error)
	FetchFile(ctx context.Context, artifactID, relPath, destDir string) error
	FetchSnapshot(ctx context.Context, artifactID, destDir string) error
}
