// Package vectorstore defines the interface to the vector index and its
// embedded chromem-go implementation.
package vectorstore

import (
	"context"
	"errors"
)

// Sentinel errors for vector store operations.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidDocument indicates a document violating index invariants.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrEmptyDocuments indicates empty or nil documents.
	ErrEmptyDocuments = errors.New("empty or nil documents")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("failed to generate embeddings")
)

// Embedder generates vector embeddings from text.
//
// Embeddings are deterministic per model identifier: the same text always
// produces the same vector for a given model.
type Embedder interface {
	// EmbedDocuments generates embeddings for multiple texts.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store is the vector index collaborator. It owns a single named collection
// backed by a persistent location.
//
// The store never rewrites or deduplicates existing entries: repeated
// indexing of the same source produces duplicates. Wipe is the only
// destructive operation and is always explicit.
type Store interface {
	// Add appends documents to the collection and returns their IDs.
	Add(ctx context.Context, docs []Document) ([]string, error)

	// Query performs similarity search, returning up to k results ranked by
	// the underlying index. The filter is applied as given; an empty filter
	// is unrestricted. A query matching nothing returns an empty slice and
	// no error.
	Query(ctx context.Context, query string, k int, filter Filter) ([]SearchResult, error)

	// Count returns the number of items in the collection.
	Count(ctx context.Context) (int, error)

	// Wipe destroys the collection's persisted state. Irreversible.
	Wipe(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
