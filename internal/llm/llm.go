// Package llm wraps the OpenAI-compatible extraction service. The client
// only produces raw text; decoding and repair happen in the grader package.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pavelanni/grader/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a new extraction client.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// Ping verifies the endpoint is reachable.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("LLM health check: %w", err)
	}
	return nil
}

// Extract sends an extraction prompt and returns the model's raw text
// output. The prompt instructs the model to answer with a single JSON
// object, but the output may still carry code fences or surrounding prose.
func (c *Client) Extract(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   900,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("extraction API call: %v: %w", err, model.ErrExtractionService)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("extraction returned no choices: %w", model.ErrExtractionService)
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if raw == "" {
		return "", fmt.Errorf("extraction returned empty content: %w", model.ErrExtractionService)
	}
	slog.Debug("extraction response", "chars", len(raw))
	return raw, nil
}
