// Package lexical provides term-based scoring over chunk passages.
package lexical

import (
	"context"
	"fmt"

	"github.com/sorrel/kioku/internal/config"
	"github.com/sorrel/kioku/internal/models"
)

// Scorer ranks chunks against a query using lexical evidence only.
type Scorer interface {
	// Index makes the given chunks searchable, replacing any previous corpus.
	Index(ctx context.Context, chunks []models.Chunk) error

	// Rank returns up to limit chunks ordered by descending lexical score.
	// Chunks with zero score are omitted. Ordering is deterministic: ties on
	// score are broken by ascending chunk ID.
	Rank(ctx context.Context, query string, limit int) ([]models.RankedHit, error)

	// Backend identifies the scorer implementation.
	Backend() string

	Close() error
}

// New creates a lexical scorer for the configured backend.
func New(cfg *config.Config) (Scorer, error) {
	switch cfg.Retrieval.LexicalBackend {
	case config.LexicalOverlap:
		return NewOverlapScorer(), nil
	case config.LexicalBleve:
		return NewBleveScorer(cfg.Storage.BleveIndexPath)
	default:
		return nil, fmt.Errorf("unknown lexical backend: %s", cfg.Retrieval.LexicalBackend)
	}
}
