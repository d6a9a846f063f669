// Package llmsession drives one user turn through the LLM: assembling
// the conversation and tool set, sending the chat-completion request,
// dispatching any tool calls the model asks for, and looping until
// the model answers in plain text or the tool-call chain limit is
// reached.
package llmsession

import (
	"context"

	anthropic "github.com/anthropics/anthropic-sdk-go"
)

// Client is the subset of the Anthropic Messages API the session loop
// needs. Mirrored as an interface (matching the pack's own
// model.Client adapter shape) so tests can substitute a fake instead
// of making real network calls.
type Client interface {
	CreateMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)
}

// AnthropicClient adapts the real SDK's MessageService to Client.
type AnthropicClient struct {
	Messages *anthropic.MessageService
}

func (c *AnthropicClient) CreateMessage(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return c.Messages.New(ctx, params)
}
