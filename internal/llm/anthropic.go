// Package llm calls the Anthropic Messages API for stylist suggestions.
package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Config holds the model settings of the Anthropic client.
type Config struct {
	APIKey        string
	Model         string
	MaxTokens     int64
	MaxConcurrent int64 // in-flight requests per process
}

// Client sends single-turn prompts to one pinned Claude model.
type Client struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
	sem       *semaphore.Weighted
	logger    *zap.Logger
}

// NewClient creates a new Anthropic client with the given config.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("anthropic model is required")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Client{
		client:    &client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		sem:       semaphore.NewWeighted(cfg.MaxConcurrent),
		logger:    logger,
	}, nil
}

// Complete sends prompt as one user message and returns the first text block
// of the reply. A reply without text blocks yields "" and no error.
func (c *Client) Complete(ctx context.Context, prompt string) (string, string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", "", fmt.Errorf("waiting for LLM slot: %w", err)
	}
	defer c.sem.Release(1)

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	c.logger.Debug("Anthropic reply received",
		zap.String("model", string(message.Model)),
		zap.String("stopReason", string(message.StopReason)),
		zap.Int64("inputTokens", message.Usage.InputTokens),
		zap.Int64("outputTokens", message.Usage.OutputTokens))

	return firstText(message.Content), c.model, nil
}

func firstText(blocks []anthropic.ContentBlockUnion) string {
	for _, block := range blocks {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}
