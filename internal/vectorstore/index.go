// Package vectorstore provides the namespaced vector index adapter used for
// incident record storage and similarity retrieval.
package vectorstore

import (
	"context"
	"errors"
)

// Sentinel errors for vector store operations.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrLengthMismatch is returned when documents, metadata, and ids are
	// all supplied but their lengths differ.
	ErrLengthMismatch = errors.New("documents, metadatas, and ids length mismatch")

	// ErrEmptyDocuments indicates empty or nil documents.
	ErrEmptyDocuments = errors.New("empty or nil documents")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("failed to generate embeddings")

	// ErrConnectionFailed indicates index connection issues.
	ErrConnectionFailed = errors.New("failed to connect to vector index")

	// ErrInvalidNamespace indicates namespace name validation failure.
	ErrInvalidNamespace = errors.New("invalid namespace")
)

// Record is one vector with its identifier and metadata payload.
type Record struct {
	ID       string
	Vector   []float32
	Metadata map[string]any
}

// Match is one ranked similarity result.
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]any
}

// IndexStats holds aggregate index statistics.
type IndexStats struct {
	// TotalCount is the number of vectors across all namespaces.
	TotalCount int

	// Dimension is the configured vector dimensionality.
	Dimension int
}

// Index is the external vector index collaborator. Namespaces are logical
// partitions; a record lives in exactly one namespace, and queries are
// scoped to one namespace. The empty namespace is a valid partition of its
// own.
type Index interface {
	// Upsert writes records into a namespace, overwriting any existing
	// record with the same id (last write wins per id).
	Upsert(ctx context.Context, namespace string, records []Record) error

	// Query returns up to topK matches for the vector in the namespace,
	// ranked by similarity (highest first). Filter entries are matched
	// against record metadata; all entries must match. Metadata is only
	// populated on matches when includeMetadata is true.
	Query(ctx context.Context, namespace string, vector []float32, topK int, filter map[string]any, includeMetadata bool) ([]Match, error)

	// Stats returns aggregate statistics. The index's statistics may be
	// eventually consistent after an upsert.
	Stats(ctx context.Context) (IndexStats, error)

	// Close releases the connection.
	Close() error
}
