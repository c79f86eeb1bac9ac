package generation

import (
	"context"
)

// Role identifies the author of a message in a generation request.
type Role string

// Message roles understood by every provider adapter.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a generation request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Options tunes a single generation call. Zero values mean "provider default".
type Options struct {
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`

	// Shape is the record the caller will parse from the reply. Providers
	// ignore it; caching decorators keep only replies that hold a complete
	// record of this shape.
	Shape Shape `json:"shape"`
}

// Usage is the token accounting reported by the provider.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Response is the provider's answer to a generation call.
type Response struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`

	// StoppedAtLimit is set when the provider reports that output stopped at
	// the token limit rather than at a natural end.
	StoppedAtLimit bool `json:"stopped_at_limit"`
}

// Generator defines the interface for the external generative text service.
// This interface serves as a boundary between the curriculum pipeline and
// external AI/LLM providers, following the hexagonal architecture pattern.
//
// Implementations do not retry at the protocol level beyond transient
// transport failures; truncation and parse recovery belong to the Completer.
type Generator interface {
	// Generate sends messages to the provider and returns the generated text.
	//
	// Parameters:
	//   - ctx: Context for the operation, which can be used for cancellation
	//   - messages: The conversation to send, system message first if present
	//   - operation: A tag identifying the pipeline step, used for logs and cost
	//   - opts: Token budget and sampling temperature for this call
	//
	// Returns:
	//   - The generated text plus usage metadata
	//   - An error if the call fails (see errors.go for specific types)
	Generate(ctx context.Context, messages []Message, operation string, opts Options) (*Response, error)
}

// GeneratorFunc adapts an ordinary function to the Generator interface.
type GeneratorFunc func(ctx context.Context, messages []Message, operation string, opts Options) (*Response, error)

// Generate calls f.
func (f GeneratorFunc) Generate(
	ctx context.Context,
	messages []Message,
	operation string,
	opts Options,
) (*Response, error) {
	return f(ctx, messages, operation, opts)
}
