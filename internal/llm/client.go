// Package llm provides the completion-service client used for answer
// generation. It defines a provider-agnostic interface with an OpenAI-style
// implementation and a deterministic mock for testing.
package llm

import (
	"context"
	"errors"
)

// ErrGeneration is returned when the completion service fails or returns an
// unusable response. Callers treat it as a signal to degrade, not to abort.
var ErrGeneration = errors.New("llm: generation failed")

// Client defines the interface for text generation.
// Implementations must be stateless and safe for concurrent use.
type Client interface {
	// Generate produces text from a prompt using the configured model.
	Generate(ctx context.Context, prompt string) (string, error)
}
