package lexical

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sorrel/kioku/internal/models"
)

func TestBleveScorerIndexAndRank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bleve")
	s, err := NewBleveScorer(path)
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	defer s.Close()

	chunks := []models.Chunk{
		{ChunkID: "notes/go.md#0", NoteID: "notes/go.md", Title: "Go", Text: "goroutine scheduling and channels"},
		{ChunkID: "notes/py.md#0", NoteID: "notes/py.md", Title: "Python", Text: "asyncio event loop"},
	}
	if err := s.Index(context.Background(), chunks); err != nil {
		t.Fatalf("index: %v", err)
	}

	hits, err := s.Rank(context.Background(), "goroutine", 10)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].ChunkID != "notes/go.md#0" {
		t.Errorf("expected goroutine chunk, got %s", hits[0].ChunkID)
	}
	if hits[0].Rank != 1 {
		t.Errorf("expected rank 1, got %d", hits[0].Rank)
	}
}

func TestBleveScorerReindexReplacesCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bleve")
	s, err := NewBleveScorer(path)
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	defer s.Close()

	first := []models.Chunk{
		{ChunkID: "old#0", NoteID: "old", Text: "stale topic"},
	}
	if err := s.Index(context.Background(), first); err != nil {
		t.Fatalf("index: %v", err)
	}
	second := []models.Chunk{
		{ChunkID: "new#0", NoteID: "new", Text: "fresh topic"},
	}
	if err := s.Index(context.Background(), second); err != nil {
		t.Fatalf("reindex: %v", err)
	}

	hits, err := s.Rank(context.Background(), "stale", 10)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("old corpus still searchable after reindex: %d hits", len(hits))
	}
}

func TestBleveScorerMatchesTitle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bleve")
	s, err := NewBleveScorer(path)
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	defer s.Close()

	chunks := []models.Chunk{
		{ChunkID: "notes/bayes.md#0", NoteID: "notes/bayes.md", Title: "Bayes theorem", Text: "posterior from prior and likelihood"},
	}
	if err := s.Index(context.Background(), chunks); err != nil {
		t.Fatalf("index: %v", err)
	}

	// Standard analyzer, no stemming: the exact word "bayes" must match.
	hits, err := s.Rank(context.Background(), "bayes", 10)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected title match, got %d hits", len(hits))
	}
}
