package server

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultClaudeModel is used when serve gets no --model
const DefaultClaudeModel = "claude-sonnet-4-20250514"

const claudeMaxTokens = 4096

// ClaudeResponder forwards messages to the Anthropic Messages API
type ClaudeResponder struct {
	client anthropic.Client
	model  string
}

// NewClaudeResponder creates a responder authenticated with apiKey.
// Extra request options are passed to the SDK client.
func NewClaudeResponder(apiKey, model string, opts ...option.RequestOption) *ClaudeResponder {
	if model == "" {
		model = DefaultClaudeModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &ClaudeResponder{
		client: anthropic.NewClient(opts...),
		model:  model,
	}
}

func (c *ClaudeResponder) Name() string { return "claude" }

// Model returns the model messages are sent to
func (c *ClaudeResponder) Model() string { return c.model }

func (c *ClaudeResponder) Respond(ctx context.Context, text string) (string, bool, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: claudeMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", false, err
	}

	var parts []string
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			parts = append(parts, block.Text)
		}
	}
	reply := strings.Join(parts, "\n")
	if strings.TrimSpace(reply) == "" {
		return "", false, errors.New("model returned no text")
	}
	return reply, true, nil
}

// Summarize sends prompt as a single user turn and returns the text reply
func (c *ClaudeResponder) Summarize(ctx context.Context, prompt string) (string, error) {
	reply, _, err := c.Respond(ctx, prompt)
	return reply, err
}
