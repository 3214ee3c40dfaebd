//go:build !faiss || !cgo
// +build !faiss !cgo

// Package vector provides a stub for FAISS when the faiss build tag is not set.
package vector

import (
	"context"
	"fmt"
)

// FAISSIndex is a stub that returns an error when FAISS is not available.
// Build with -tags=faiss to enable FAISS support.
type FAISSIndex struct{}

// NewFAISSIndex returns an error because FAISS is not available.
func NewFAISSIndex(dimensions int) (*FAISSIndex, error) {
	return nil, fmt.Errorf("FAISS not available: build with -tags=faiss and install FAISS library")
}

// Add is not implemented without FAISS.
func (f *FAISSIndex) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	return fmt.Errorf("FAISS not available")
}

// Search is not implemented without FAISS.
func (f *FAISSIndex) Search(ctx context.Context, query []float32, k int) ([]*Result, error) {
	return nil, fmt.Errorf("FAISS not available")
}

// Save is not implemented without FAISS.
func (f *FAISSIndex) Save(path string) error {
	return fmt.Errorf("FAISS not available")
}

// Load is not implemented without FAISS.
func (f *FAISSIndex) Load(path string) error {
	return fmt.Errorf("FAISS not available")
}

// Size returns 0 for the stub.
func (f *FAISSIndex) Size() int { return 0 }

// Dimensions returns 0 for the stub.
func (f *FAISSIndex) Dimensions() int { return 0 }

// Backend returns the index backend identifier.
func (f *FAISSIndex) Backend() string { return "faiss" }

// Close is a no-op for the stub.
func (f *FAISSIndex) Close() error { return nil }
