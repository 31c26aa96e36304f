package core

import (
	"context"
	"errors"
)

// Roles used in chat turns.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("ai: empty response")

// Message represents a single chat turn.
type Message struct {
	Role    string
	Content string
}

// Options controls model behavior; zero fields fall back to the client's defaults.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int
	SystemPrompt        string
}

// Client is a provider-agnostic interface for the completions we need.
type Client interface {
	// Complete sends a system prompt and a single user turn. An empty userPrompt
	// sends only the system turn.
	Complete(ctx context.Context, systemPrompt string, userPrompt string, opts Options) (string, error)
	// Chat sends an arbitrary conversation. opts.SystemPrompt, when set, is
	// prepended as a system turn.
	Chat(ctx context.Context, messages []Message, opts Options) (string, error)
}

// BuildMessages assembles the turns Complete sends.
func BuildMessages(systemPrompt, userPrompt string) []Message {
	var out []Message
	if systemPrompt != "" {
		out = append(out, Message{Role: RoleSystem, Content: systemPrompt})
	}
	if userPrompt != "" {
		out = append(out, Message{Role: RoleUser, Content: userPrompt})
	}
	return out
}

// Merge overlays the non-zero fields of opts on defaults.
func Merge(defaults, opts Options) Options {
	out := defaults
	if opts.Model != "" {
		out.Model = opts.Model
	}
	if opts.Temperature != 0 {
		out.Temperature = opts.Temperature
	}
	if opts.MaxCompletionTokens != 0 {
		out.MaxCompletionTokens = opts.MaxCompletionTokens
	}
	if opts.SystemPrompt != "" {
		out.SystemPrompt = opts.SystemPrompt
	}
	return out
}
