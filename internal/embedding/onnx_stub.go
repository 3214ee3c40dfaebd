//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"
)

// ONNXEmbedder stub type when built without CGO (see onnx.go for real implementation).
type ONNXEmbedder struct{}

// NewONNXEmbedder returns an error when built without CGO (ONNX not available).
func NewONNXEmbedder(_ string, _, _, _ int) (*ONNXEmbedder, error) {
	return nil, errors.New("ONNX embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime")
}

// Embed is not implemented without CGO.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("ONNX embedder not available")
}

// EmbedBatch is not implemented without CGO.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("ONNX embedder not available")
}

// Dimensions returns 0 for the stub.
func (e *ONNXEmbedder) Dimensions() int { return 0 }

// Name returns the backend identifier.
func (e *ONNXEmbedder) Name() string { return "onnx" }

// Close is a no-op for the stub.
func (e *ONNXEmbedder) Close() error { return nil }
