// Package vector provides chunk vector indexes with cosine similarity search.
package vector

import (
	"context"
	"errors"
)

var (
	// ErrEmptyCorpus is returned when building an index from zero chunks.
	ErrEmptyCorpus = errors.New("vector index: empty corpus")
	// ErrSchemaMismatch is returned when the embedder at query time does not
	// match the backend or dimensionality recorded in the index manifest.
	ErrSchemaMismatch = errors.New("vector index: embedding schema mismatch")
)

// Index defines vector storage and similarity search over chunk embeddings.
// Vectors are assumed L2-normalized, so inner product equals cosine
// similarity. Indexes are built wholesale and read-only at query time.
type Index interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	// Search returns up to k hits ordered by descending similarity, ties
	// broken by insertion order. Fewer than k entries returns all of them.
	Search(ctx context.Context, query []float32, k int) ([]*Result, error)
	Save(path string) error
	Load(path string) error
	Size() int
	Dimensions() int
	// Backend returns the index backend identifier ("memory", "faiss").
	Backend() string
	Close() error
}

// Result is a single vector search hit.
type Result struct {
	ChunkID string
	Score   float64 // cosine similarity for normalized vectors
}
