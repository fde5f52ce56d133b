package domain

import (
	"context"

	"github.com/google/uuid"
)

// Document represents a single source file loaded into the system.
type Document struct {
	ID      uuid.UUID
	Path    string
	Content string
}

// Chunk is a sentence-aligned span of a document used as the unit of retrieval.
type Chunk struct {
	DocumentPath string
	Text         string
	Index        int
}

// Extractor turns a document on disk into normalized plain text.
type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) []Chunk
}

// Embedder converts a batch of texts into fixed-dimension vectors, one per input, in order.
type Embedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces quiz or explanation text from retrieved context and a user query.
type Generator interface {
	Quiz(ctx context.Context, retrieved, query string) (string, error)
	Explain(ctx context.Context, retrieved, query string) (string, error)
}

// Retriever returns the concatenated text of the chunks nearest to a query.
type Retriever interface {
	Search(ctx context.Context, query string, k int) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
