package vector

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// ManifestFile is the manifest filename inside an index directory.
	ManifestFile = "manifest.json"
	// VectorsFile is the vector data filename inside an index directory.
	VectorsFile = "vectors.bin"
)

// Manifest describes a published index artifact: which backend and embedder
// produced it and with what dimensionality. It is written at build time and
// checked every time the index is opened, so a mismatched embedding function
// fails fast instead of producing silently wrong similarities.
type Manifest struct {
	Backend    string    `json:"backend"`
	Embedder   string    `json:"embedder"`
	Dimensions int       `json:"dimensions"`
	Count      int       `json:"count"`
	BuiltAt    time.Time `json:"built_at"`
}

// WriteManifest writes the manifest into dir.
func WriteManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest reads the manifest from dir.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// Check verifies that the embedder in use matches the manifest.
func (m *Manifest) Check(embedderName string, dimensions int) error {
	if m.Embedder != embedderName {
		return fmt.Errorf("index built with embedder %q, query uses %q: %w",
			m.Embedder, embedderName, ErrSchemaMismatch)
	}
	if m.Dimensions != dimensions {
		return fmt.Errorf("index has %d dimensions, embedder produces %d: %w",
			m.Dimensions, dimensions, ErrSchemaMismatch)
	}
	return nil
}

// Open loads a published index directory using the backend and dimensions
// recorded in its manifest, after validating them against the embedder.
func Open(dir, embedderName string, dimensions int) (Index, *Manifest, error) {
	m, err := ReadManifest(dir)
	if err != nil {
		return nil, nil, err
	}
	if err := m.Check(embedderName, dimensions); err != nil {
		return nil, nil, err
	}
	idx, err := New(m.Backend, m.Dimensions)
	if err != nil {
		return nil, nil, err
	}
	if err := idx.Load(filepath.Join(dir, VectorsFile)); err != nil {
		idx.Close()
		return nil, nil, err
	}
	return idx, m, nil
}
