package llm

import "context"

// MockClient is a deterministic Client for testing.
type MockClient struct {
	// Response is the fixed text returned by Generate.
	Response string

	// Error, if set, is returned by Generate instead of a response.
	Error error

	// LastPrompt stores the most recent prompt passed to Generate.
	LastPrompt string

	// Calls counts Generate invocations.
	Calls int
}

// NewMockClient creates a mock that always returns response.
func NewMockClient(response string) *MockClient {
	return &MockClient{Response: response}
}

// NewMockClientWithError creates a mock that always fails.
func NewMockClientWithError(err error) *MockClient {
	return &MockClient{Error: err}
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.LastPrompt = prompt
	m.Calls++
	if m.Error != nil {
		return "", m.Error
	}
	return m.Response, nil
}
