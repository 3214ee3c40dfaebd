// Package embedding provides text embedding backends: deterministic hashing
// (default) and ONNX sentence embeddings, plus caching.
package embedding

import (
	"context"
	"fmt"

	"github.com/sorrel/kioku/internal/config"
)

// Embedder produces vector embeddings for text. Implementations must be
// deterministic for a fixed configuration: the same text always yields the
// same vector, with unit L2 norm (or the zero vector for empty input).
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	// Name identifies the backend ("hashing", "onnx"). It is recorded in the
	// index manifest so a mismatched embedder is rejected at query time.
	Name() string
	Close() error
}

// New creates the embedder selected by cfg.Backend.
func New(cfg *config.EmbeddingConfig) (Embedder, error) {
	switch cfg.Backend {
	case config.EmbeddingHashing:
		return NewHashingEmbedder(cfg.Dimensions), nil
	case config.EmbeddingONNX:
		return NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens, cfg.CacheSize)
	default:
		return nil, fmt.Errorf("unknown embedding backend: %q", cfg.Backend)
	}
}

// IsZero reports whether vec is the zero vector. Empty text embeds to the
// zero vector, which downstream treats as non-matchable.
func IsZero(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
