// Package integration exercises the retrieval stack with persistent backends
// (SQLite store, bleve lexical index, published vector index).
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sorrel/kioku/internal/config"
	"github.com/sorrel/kioku/internal/embedding"
	"github.com/sorrel/kioku/internal/indexer"
	"github.com/sorrel/kioku/internal/lexical"
	"github.com/sorrel/kioku/internal/models"
	"github.com/sorrel/kioku/internal/retriever"
	"github.com/sorrel/kioku/internal/store"
	"github.com/sorrel/kioku/internal/vector"
)

func testChunks() []models.Chunk {
	return []models.Chunk{
		{
			ChunkID: "notes/go.md#1", NoteID: "notes/go.md", Title: "Go",
			Section: "Concurrency", Position: 1,
			Text: "Goroutines are lightweight threads scheduled by the runtime.",
		},
		{
			ChunkID: "notes/go.md#2", NoteID: "notes/go.md", Title: "Go",
			Section: "Tooling", Position: 2,
			Text: "The go command builds and tests packages.",
		},
		{
			ChunkID: "notes/db.md#1", NoteID: "notes/db.md", Title: "Databases",
			Section: "Indexes", Position: 1,
			Text: "B-tree indexes keep rows sorted for range scans.",
		},
	}
}

func TestIntegration_BleveRetrieval(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Embedding.Dimensions = 128
	cfg.Retrieval.LexicalBackend = config.LexicalBleve
	cfg.Storage.DatabasePath = filepath.Join(dir, "notes.db")
	cfg.Storage.IndexDir = filepath.Join(dir, "index")
	cfg.Storage.BleveIndexPath = filepath.Join(dir, "bleve")

	st, err := store.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	ctx := context.Background()
	chunks := testChunks()
	if err := st.UpsertNote(ctx, &models.Note{ID: "notes/go.md", Title: "Go"}); err != nil {
		t.Fatal(err)
	}
	if err := st.UpsertNote(ctx, &models.Note{ID: "notes/db.md", Title: "Databases"}); err != nil {
		t.Fatal(err)
	}
	if err := st.ReplaceChunks(ctx, "notes/go.md", chunks[:2]); err != nil {
		t.Fatal(err)
	}
	if err := st.ReplaceChunks(ctx, "notes/db.md", chunks[2:]); err != nil {
		t.Fatal(err)
	}

	embedder := embedding.NewHashingEmbedder(cfg.Embedding.Dimensions)
	scorer, err := lexical.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer scorer.Close()
	if scorer.Backend() != config.LexicalBleve {
		t.Fatalf("backend: got %s", scorer.Backend())
	}

	builder := indexer.New(embedder, scorer, cfg)
	stats, err := builder.Build(ctx, chunks)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stats.Chunks != 3 {
		t.Errorf("stats.Chunks: got %d", stats.Chunks)
	}

	idx, manifest, err := vector.Open(cfg.Storage.IndexDir, embedder.Name(), embedder.Dimensions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer idx.Close()
	if manifest.Count != 3 {
		t.Errorf("manifest.Count: got %d", manifest.Count)
	}

	r := retriever.New(embedder, idx, scorer, &cfg.Retrieval)
	result, err := r.Retrieve(ctx, "goroutines runtime", 3)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(result.Hits) == 0 {
		t.Fatal("no hits")
	}
	if result.Hits[0].ChunkID != "notes/go.md#1" {
		t.Errorf("top hit: got %s", result.Hits[0].ChunkID)
	}
}

func TestIntegration_RebuildSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Embedding.Dimensions = 64
	cfg.Storage.IndexDir = filepath.Join(dir, "index")
	cfg.Storage.BleveIndexPath = filepath.Join(dir, "bleve")

	embedder := embedding.NewHashingEmbedder(cfg.Embedding.Dimensions)
	scorer := lexical.NewOverlapScorer()
	builder := indexer.New(embedder, scorer, cfg)
	ctx := context.Background()

	if _, err := builder.Build(ctx, testChunks()); err != nil {
		t.Fatal(err)
	}
	// Rebuild with one chunk dropped; the published artifact must be replaced
	if _, err := builder.Build(ctx, testChunks()[:2]); err != nil {
		t.Fatal(err)
	}

	idx, manifest, err := vector.Open(cfg.Storage.IndexDir, embedder.Name(), embedder.Dimensions())
	if err != nil {
		t.Fatal(err)
	}
	defer idx.Close()
	if manifest.Count != 2 || idx.Size() != 2 {
		t.Errorf("after rebuild: manifest.Count=%d size=%d, want 2", manifest.Count, idx.Size())
	}
	if _, err := os.Stat(cfg.Storage.IndexDir + ".old"); !os.IsNotExist(err) {
		t.Error("stale .old index directory left behind")
	}
}
