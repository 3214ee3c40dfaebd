package vector

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestManifestRoundtrip(t *testing.T) {
	dir := t.TempDir()
	m := &Manifest{
		Backend:    "memory",
		Embedder:   "hashing",
		Dimensions: 128,
		Count:      42,
		BuiltAt:    time.Now().UTC(),
	}
	if err := WriteManifest(dir, m); err != nil {
		t.Fatal(err)
	}
	got, err := ReadManifest(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.Backend != "memory" || got.Embedder != "hashing" || got.Dimensions != 128 || got.Count != 42 {
		t.Errorf("manifest roundtrip mismatch: %+v", got)
	}
}

func TestManifestCheck(t *testing.T) {
	m := &Manifest{Backend: "memory", Embedder: "hashing", Dimensions: 256}

	if err := m.Check("hashing", 256); err != nil {
		t.Errorf("matching schema rejected: %v", err)
	}
	if err := m.Check("onnx", 256); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("embedder mismatch not detected: %v", err)
	}
	if err := m.Check("hashing", 384); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("dimension mismatch not detected: %v", err)
	}
}

func TestOpenChecksSchema(t *testing.T) {
	dir := t.TempDir()
	idx, _ := NewMemoryIndex(2)
	_ = idx.Add(context.Background(), []string{"a#0"}, [][]float32{{1, 0}})
	if err := idx.Save(filepath.Join(dir, VectorsFile)); err != nil {
		t.Fatal(err)
	}
	if err := WriteManifest(dir, &Manifest{Backend: "memory", Embedder: "hashing", Dimensions: 2, Count: 1}); err != nil {
		t.Fatal(err)
	}

	opened, m, err := Open(dir, "hashing", 2)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer opened.Close()
	if m.Count != 1 || opened.Size() != 1 {
		t.Errorf("opened index size = %d, manifest count = %d", opened.Size(), m.Count)
	}

	if _, _, err := Open(dir, "onnx", 2); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("Open with wrong embedder: err = %v, want ErrSchemaMismatch", err)
	}
	if _, _, err := Open(dir, "hashing", 99); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("Open with wrong dimensions: err = %v, want ErrSchemaMismatch", err)
	}
}

func TestFactory(t *testing.T) {
	idx, err := New("memory", 8)
	if err != nil {
		t.Fatal(err)
	}
	if idx.Backend() != "memory" {
		t.Errorf("backend = %s", idx.Backend())
	}
	if _, err := New("hnsw", 8); err == nil {
		t.Error("expected error for unknown backend")
	}
}
