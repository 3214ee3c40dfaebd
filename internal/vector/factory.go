// Package vector provides vector index implementations and a factory for creating them.
package vector

import "fmt"

// New creates a vector index of the specified backend.
// Supported backends: "memory" (default, exact), "faiss" (approximate).
// FAISS requires building with -tags=faiss and having the FAISS library installed.
func New(backend string, dimensions int) (Index, error) {
	switch backend {
	case "memory", "":
		return NewMemoryIndex(dimensions)
	case "faiss":
		return NewFAISSIndex(dimensions)
	default:
		return nil, fmt.Errorf("unknown vector backend: %s (supported: memory, faiss)", backend)
	}
}

// FAISSAvailable returns true if FAISS support is compiled in.
func FAISSAvailable() bool {
	idx, err := NewFAISSIndex(1)
	if err != nil {
		return false
	}
	_ = idx.Close()
	return true
}
