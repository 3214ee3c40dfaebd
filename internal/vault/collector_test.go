package vault

import (
	"testing"

	"github.com/sorrel/kioku/internal/config"
)

func TestCollectWalksVault(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "go.md", "# Go\n\ngoroutines and channels\n")
	writeNote(t, dir, "sub/py.md", "# Python\n\nasyncio\n")
	writeNote(t, dir, ".obsidian/config.md", "# internal\n\nshould be skipped\n")
	writeNote(t, dir, "image.png", "binary junk")

	c := New(&config.VaultConfig{Path: dir, ChunkSize: 800, ChunkOverlap: 200})
	notes, chunks, err := c.Collect()
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d: %+v", len(notes), notes)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	ids := map[string]bool{}
	for _, n := range notes {
		ids[n.ID] = true
	}
	if !ids["go.md"] || !ids["sub/py.md"] {
		t.Errorf("unexpected note IDs: %v", ids)
	}
}

func TestCollectExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	writeNote(t, dir, "a.md", "# A\n\ntext\n")
	writeNote(t, dir, "b.txt", "plain text file content")

	c := New(&config.VaultConfig{Path: dir, Extensions: []string{"md", "txt"}})
	notes, _, err := c.Collect()
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes with txt allowed, got %d", len(notes))
	}

	c = New(&config.VaultConfig{Path: dir})
	notes, _, err = c.Collect()
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected only markdown by default, got %d", len(notes))
	}
}

func TestCollectMissingVault(t *testing.T) {
	c := New(&config.VaultConfig{Path: "/nonexistent/vault/path"})
	if _, _, err := c.Collect(); err == nil {
		t.Error("expected error for missing vault")
	}
}
