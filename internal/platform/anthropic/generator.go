package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/phrazzld/curricula-api/internal/config"
	"github.com/phrazzld/curricula-api/internal/generation"
)

// DefaultMaxTokens is sent when a request does not set a token budget. The
// Messages API requires one.
const DefaultMaxTokens = 4096

// stopReasonRefusal is reported when the model declines to answer.
const stopReasonRefusal anthropic.StopReason = "refusal"

// messageCreator is the part of the SDK client the generator uses.
type messageCreator interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Generator implements generation.Generator with Claude models.
type Generator struct {
	logger   *slog.Logger
	messages messageCreator
	model    anthropic.Model
	retry    generation.RetryPolicy
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Generator from the LLM configuration. SDK-level
// retries are disabled so that the shared retry policy is the only one.
func NewGenerator(logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.AnthropicAPIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client := anthropic.NewClient(
		option.WithAPIKey(cfg.AnthropicAPIKey),
		option.WithMaxRetries(0),
	)
	return newGenerator(logger, &client.Messages, anthropic.Model(cfg.ModelName),
		generation.NewRetryPolicy(cfg.MaxRetries, cfg.RetryDelaySeconds)), nil
}

func newGenerator(logger *slog.Logger, messages messageCreator, model anthropic.Model, retry generation.RetryPolicy) *Generator {
	return &Generator{
		logger:   logger.With("component", "anthropic_generator", "model", string(model)),
		messages: messages,
		model:    model,
		retry:    retry,
	}
}

// Generate sends messages to the Messages API, retrying transient errors.
func (g *Generator) Generate(
	ctx context.Context,
	messages []generation.Message,
	operation string,
	opts generation.Options,
) (*generation.Response, error) {
	params := toParams(messages)
	if len(params.Messages) == 0 {
		return nil, fmt.Errorf("%w: no user messages", generation.ErrInvalidConfig)
	}
	params.Model = g.model
	params.MaxTokens = DefaultMaxTokens
	if opts.MaxTokens > 0 {
		params.MaxTokens = int64(opts.MaxTokens)
	}
	params.Temperature = anthropic.Float(opts.Temperature)

	var out *generation.Response
	err := g.retry.Do(ctx, g.logger, func(ctx context.Context) error {
		g.logger.DebugContext(ctx, "making Anthropic API call", "operation", operation)

		msg, err := g.messages.New(ctx, params)
		if err != nil {
			return classify(err)
		}
		out, err = toResponse(msg)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func toParams(messages []generation.Message) anthropic.MessageNewParams {
	var params anthropic.MessageNewParams
	for _, m := range messages {
		switch m.Role {
		case generation.RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		case generation.RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return params
}

// classify marks client errors that no retry can fix as invalid
// configuration. Rate limits and server errors stay retryable.
func classify(err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.StatusCode {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return fmt.Errorf("%w: %v", generation.ErrInvalidConfig, err)
	}
	return err
}

func toResponse(msg *anthropic.Message) (*generation.Response, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if msg.StopReason == stopReasonRefusal {
		return nil, fmt.Errorf("%w: model refused the request", generation.ErrContentBlocked)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("%w: no text content in response", generation.ErrInvalidResponse)
	}

	return &generation.Response{
		Content: text.String(),
		Usage: generation.Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
		StoppedAtLimit: msg.StopReason == anthropic.StopReasonMaxTokens,
	}, nil
}
