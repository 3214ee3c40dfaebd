// Package store persists collected notes and chunks.
package store

import (
	"context"
	"errors"

	"github.com/sorrel/kioku/internal/models"
)

// ErrNotFound is returned when a note or chunk does not exist.
var ErrNotFound = errors.New("store: not found")

// NoteStore defines note and chunk persistence operations.
type NoteStore interface {
	UpsertNote(ctx context.Context, note *models.Note) error
	GetNote(ctx context.Context, id string) (*models.Note, error)
	ListNotes(ctx context.Context, offset, limit int) ([]*models.Note, error)
	DeleteNote(ctx context.Context, id string) error

	// ReplaceChunks swaps the chunks of a note atomically.
	ReplaceChunks(ctx context.Context, noteID string, chunks []models.Chunk) error
	GetChunk(ctx context.Context, chunkID string) (*models.Chunk, error)
	GetChunksByNote(ctx context.Context, noteID string) ([]models.Chunk, error)
	ListChunks(ctx context.Context) ([]models.Chunk, error)

	CountNotes(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}

// ChunkMap is an in-memory chunk lookup for read-only workloads where the
// chunks are already loaded from the exchange file.
type ChunkMap struct {
	byID map[string]*models.Chunk
}

// NewChunkMap indexes the given chunks by chunk ID.
func NewChunkMap(chunks []models.Chunk) *ChunkMap {
	m := &ChunkMap{byID: make(map[string]*models.Chunk, len(chunks))}
	for i := range chunks {
		m.byID[chunks[i].ChunkID] = &chunks[i]
	}
	return m
}

func (m *ChunkMap) GetChunk(ctx context.Context, chunkID string) (*models.Chunk, error) {
	c, ok := m.byID[chunkID]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}
