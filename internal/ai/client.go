// Package ai wraps the Anthropic API for conversational replies and
// generative word selection.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/arjun-christopher/Functopus/internal/config"
)

// wordPrompt asks the model for exactly one playable word and nothing else.
const wordPrompt = "Give me a single random English word between 5 and 10 letters long, " +
	"suitable for a word guessing game. Respond with only the word in lowercase, " +
	"no punctuation and no explanation."

// Client calls the Anthropic API. It is safe for concurrent use.
type Client struct {
	api    anthropic.Client
	cfg    config.AIConfig
	logger *zap.Logger
}

// NewClient creates an AI client.
//
// Precondition: cfg.APIKey must be non-empty; logger must be non-nil.
func NewClient(cfg config.AIConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai: api key is required")
	}
	return &Client{
		api:    anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Ask sends a free-form prompt and returns the model's reply text.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: c.cfg.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("ai: completion request: %w", err)
	}

	text := collectText(msg)
	if text == "" {
		return "", fmt.Errorf("ai: completion contained no text")
	}
	c.logger.Debug("completion received",
		zap.String("model", c.cfg.Model),
		zap.Int("reply_len", len(text)),
	)
	return text, nil
}

// Word asks the model for a single guessing-game word.
func (c *Client) Word(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.cfg.Model),
		MaxTokens: 16,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(wordPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("ai: word request: %w", err)
	}

	word := strings.ToLower(strings.TrimSpace(collectText(msg)))
	if word == "" {
		return "", fmt.Errorf("ai: word response contained no text")
	}
	return word, nil
}

func collectText(msg *anthropic.Message) string {
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
