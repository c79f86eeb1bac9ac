package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/curricula-api/internal/config"
	"github.com/phrazzld/curricula-api/internal/generation"
	"google.golang.org/genai"
)

// contentGenerator is the part of the genai client the generator uses.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements the generation.Generator interface using
// Google's Gemini API.
type GeminiGenerator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// models is the Gemini API surface for making requests
	models contentGenerator

	// model is the name of the Gemini model to use
	model string

	// retry governs retries of transient API errors
	retry generation.RetryPolicy
}

var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a GeminiGenerator from the LLM configuration.
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newGenerator(logger, client.Models, cfg.ModelName,
		generation.NewRetryPolicy(cfg.MaxRetries, cfg.RetryDelaySeconds)), nil
}

func newGenerator(logger *slog.Logger, models contentGenerator, model string, retry generation.RetryPolicy) *GeminiGenerator {
	return &GeminiGenerator{
		logger: logger.With("component", "gemini_generator", "model", model),
		models: models,
		model:  model,
		retry:  retry,
	}
}

// Generate sends messages to Gemini, retrying transient API errors.
func (g *GeminiGenerator) Generate(
	ctx context.Context,
	messages []generation.Message,
	operation string,
	opts generation.Options,
) (*generation.Response, error) {
	system, contents := toContents(messages)
	if len(contents) == 0 {
		return nil, fmt.Errorf("%w: no user messages", generation.ErrInvalidConfig)
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: system,
		Temperature:       genai.Ptr(float32(opts.Temperature)),
	}
	if opts.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(opts.MaxTokens)
	}

	var out *generation.Response
	err := g.retry.Do(ctx, g.logger, func(ctx context.Context) error {
		g.logger.DebugContext(ctx, "making Gemini API call", "operation", operation)

		resp, err := g.models.GenerateContent(ctx, g.model, contents, cfg)
		if err != nil {
			return err
		}
		out, err = toResponse(resp)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// toContents splits messages into the system instruction and the
// conversation turns.
func toContents(messages []generation.Message) (*genai.Content, []*genai.Content) {
	var system []string
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case generation.RoleSystem:
			system = append(system, m.Content)
		case generation.RoleAssistant:
			contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: m.Content}}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: m.Content}}})
		}
	}

	if len(system) == 0 {
		return nil, contents
	}
	return &genai.Content{Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}}}, contents
}

func toResponse(resp *genai.GenerateContentResponse) (*generation.Response, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	out := &generation.Response{
		Content:        text.String(),
		StoppedAtLimit: candidate.FinishReason == genai.FinishReasonMaxTokens,
	}
	if resp.UsageMetadata != nil {
		out.Usage = generation.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}
