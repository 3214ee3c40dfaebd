package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sorrel/kioku/internal/models"
)

func TestChunksJSONLRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.jsonl")
	chunks := []models.Chunk{
		{ChunkID: "n1#0", NoteID: "n1", Title: "T", Section: "Intro", Text: "first", Tags: []string{"a"}, Position: 0},
		{ChunkID: "n1#1", NoteID: "n1", Title: "T", Text: "second", Position: 1},
	}
	if err := WriteChunksJSONL(path, chunks); err != nil {
		t.Fatal(err)
	}
	got, err := ReadChunksJSONL(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(got))
	}
	if got[0].ChunkID != "n1#0" || got[1].Text != "second" {
		t.Errorf("got %+v", got)
	}
}

func TestNotesJSONLRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.jsonl")
	notes := []models.Note{
		{ID: "n1", Title: "T", Tags: []string{"a"}, Content: "body"},
	}
	if err := WriteNotesJSONL(path, notes); err != nil {
		t.Fatal(err)
	}
	got, err := ReadNotesJSONL(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "n1" {
		t.Errorf("got %+v", got)
	}
}

func TestReadChunksJSONLSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.jsonl")
	data := `{"chunk_id":"a#0","note_id":"a","text":"t","position":0}

{"chunk_id":"a#1","note_id":"a","text":"u","position":1}
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadChunksJSONL(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 chunks, got %d", len(got))
	}
}

func TestReadChunksJSONLMalformedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunks.jsonl")
	if err := os.WriteFile(path, []byte("{not json}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadChunksJSONL(path); err == nil {
		t.Error("expected error for malformed line")
	}
}

func TestWriteChunksJSONLCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "chunks.jsonl")
	if err := WriteChunksJSONL(path, []models.Chunk{{ChunkID: "a#0", NoteID: "a", Text: "t"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}
}

func TestReadChunksJSONLMissingFile(t *testing.T) {
	if _, err := ReadChunksJSONL(filepath.Join(t.TempDir(), "missing.jsonl")); err == nil {
		t.Error("expected error for missing file")
	}
}
