package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sorrel/kioku/internal/config"
)

// OpenAIClient talks to an OpenAI-compatible chat completion endpoint.
// Any service speaking the same wire protocol works through BaseURL.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	maxTok  int
	temp    float32
	timeout time.Duration
}

// NewOpenAIClient creates a client from config. The API key is read from the
// environment variable named by cfg.APIKeyEnv, never from the config file.
func NewOpenAIClient(cfg *config.LLMConfig) (*OpenAIClient, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key: environment variable %s is not set", cfg.APIKeyEnv)
	}

	cc := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{
		client:  openai.NewClientWithConfig(cc),
		model:   cfg.Model,
		maxTok:  cfg.MaxTokens,
		temp:    cfg.Temperature,
		timeout: time.Duration(cfg.TimeoutSec) * time.Second,
	}, nil
}

// Generate sends the prompt as a single user message and returns the reply.
// Failures and empty responses wrap ErrGeneration.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTok,
		Temperature: c.temp,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty response", ErrGeneration)
	}
	return resp.Choices[0].Message.Content, nil
}
