package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"
)

// DefaultContinuationBudget is the number of continuation calls a Completer
// makes before giving up on a truncated response.
const DefaultContinuationBudget = 3

// tailLength is how much of the accumulated text is quoted back to the
// provider in a continuation request.
const tailLength = 200

// State is the state of a completion run.
type State int

const (
	// StateTruncated means the accumulated text is incomplete and more
	// continuation attempts remain.
	StateTruncated State = iota
	// StateComplete means the accumulated text holds a parseable record.
	StateComplete
	// StateFailed means no record can be obtained.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "truncated"
	}
}

// Classify decides the state of accumulated text without regard to budget.
func Classify(text string, shape Shape) State {
	if _, err := parseRegion(text, shape); err == nil {
		return StateComplete
	}
	if IsTruncated(text, shape) {
		return StateTruncated
	}
	return StateFailed
}

// Request is one structured generation request.
type Request struct {
	Operation string
	Messages  []Message
	Options   Options
	Shape     Shape
}

// Completer issues a generation request and keeps requesting continuations
// until the response forms a complete structured record or the continuation
// budget runs out.
type Completer struct {
	gen     Generator
	budget  int
	timeout time.Duration
	pricing Pricing
	logger  *slog.Logger
}

// CompleterOption configures a Completer.
type CompleterOption func(*Completer)

// WithBudget sets the continuation budget. Negative values are treated as 0.
func WithBudget(n int) CompleterOption {
	return func(c *Completer) {
		if n < 0 {
			n = 0
		}
		c.budget = n
	}
}

// WithRequestTimeout bounds every individual generative call.
func WithRequestTimeout(d time.Duration) CompleterOption {
	return func(c *Completer) {
		c.timeout = d
	}
}

// WithPricing sets the rates used to cost each call.
func WithPricing(p Pricing) CompleterOption {
	return func(c *Completer) {
		c.pricing = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) CompleterOption {
	return func(c *Completer) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCompleter creates a Completer over gen.
func NewCompleter(gen Generator, opts ...CompleterOption) *Completer {
	c := &Completer{
		gen:     gen,
		budget:  DefaultContinuationBudget,
		pricing: DefaultPricing(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "completer")
	return c
}

// Budget returns the configured continuation budget.
func (c *Completer) Budget() int {
	return c.budget
}

// Complete runs req to completion and returns the structured region of the
// response. Every call, continuations included, is costed into ledger.
//
// Errors:
//   - *ServiceError when the provider call fails for a reason other than a
//     request timeout
//   - *ParseError when the response is still truncated after the budget is
//     spent, or is not a valid record at all
//   - ErrBudgetExceeded when ledger's budget is exhausted before a call
func (c *Completer) Complete(ctx context.Context, ledger *Ledger, req Request) (string, error) {
	req.Options.Shape = req.Shape
	text, err := c.call(ctx, ledger, req.Operation, req.Messages, req.Options)

	for attempt := 0; ; attempt++ {
		if err != nil {
			// a request timeout is retried like a truncation, anything else
			// is the provider failing outright
			if !IsTimeout(err) || ctx.Err() != nil {
				return "", err
			}
		} else {
			switch Classify(text, req.Shape) {
			case StateComplete:
				region, _ := parseRegion(text, req.Shape)
				if attempt > 0 {
					c.logger.InfoContext(ctx, "structured response completed by continuation",
						"operation", req.Operation,
						"attempts", attempt)
				}
				return region, nil
			case StateFailed:
				_, perr := parseRegion(text, req.Shape)
				return "", failedRecord(req, attempt, perr)
			}
		}

		if attempt >= c.budget {
			c.logger.WarnContext(ctx, "continuation budget exhausted",
				"operation", req.Operation,
				"budget", c.budget,
				"text_length", len(text))
			return "", &ParseError{
				Operation: req.Operation,
				Attempts:  attempt,
				Reason:    "response still incomplete",
			}
		}

		c.logger.DebugContext(ctx, "requesting continuation",
			"operation", req.Operation,
			"attempt", attempt+1,
			"budget", c.budget,
			"timed_out", err != nil)

		if text == "" {
			// nothing to continue from; the first call timed out
			text, err = c.call(ctx, ledger, req.Operation, req.Messages, req.Options)
			continue
		}

		var cont string
		cont, err = c.call(ctx, ledger, req.Operation+ContinuationSuffix,
			continuationMessages(req.Messages, text), req.Options)
		if err == nil {
			text = Merge(text, cont)
		}
	}
}

// failedRecord reports text that can never become a record, folding the
// parser's reason into a single error for the request's operation.
func failedRecord(req Request, attempts int, cause error) *ParseError {
	reason := "response is not a valid " + req.Shape.String()
	var inner *ParseError
	if errors.As(cause, &inner) {
		reason += ": " + inner.Reason
		cause = inner.Err
	}
	return &ParseError{
		Operation: req.Operation,
		Attempts:  attempts,
		Reason:    reason,
		Err:       cause,
	}
}

// CompleteInto runs req to completion and decodes the record into v.
func (c *Completer) CompleteInto(ctx context.Context, ledger *Ledger, req Request, v any) error {
	region, err := c.Complete(ctx, ledger, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(region), v); err != nil {
		return &ParseError{
			Operation: req.Operation,
			Reason:    "record does not match expected fields",
			Err:       err,
		}
	}
	return nil
}

// call makes one costed, time-bounded generative call.
func (c *Completer) call(
	ctx context.Context,
	ledger *Ledger,
	operation string,
	messages []Message,
	opts Options,
) (string, error) {
	if ledger != nil {
		if err := ledger.CheckBudget(); err != nil {
			return "", err
		}
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.gen.Generate(callCtx, messages, operation, opts)
	if err != nil {
		c.logger.ErrorContext(ctx, "generative call failed",
			"operation", operation,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return "", &ServiceError{Operation: operation, Err: err}
	}
	if resp == nil {
		return "", &ServiceError{
			Operation: operation,
			Err:       fmt.Errorf("%w: nil response", ErrInvalidResponse),
		}
	}

	cost := c.pricing.Cost(operation, resp.Usage)
	if ledger != nil {
		ledger.Track(operation, cost)
	}

	c.logger.InfoContext(ctx, "generative call completed",
		"operation", operation,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"stopped_at_limit", resp.StoppedAtLimit,
		"cost", cost,
		"duration_ms", time.Since(start).Milliseconds())

	return resp.Content, nil
}

// continuationMessages builds the request asking the provider to resume
// text from where it stopped. The original system message is kept so the
// output format instructions still apply.
func continuationMessages(original []Message, text string) []Message {
	tail := text
	if len(tail) > tailLength {
		cut := len(tail) - tailLength
		for cut < len(tail) && !utf8.RuneStart(tail[cut]) {
			cut++
		}
		tail = tail[cut:]
	}

	var msgs []Message
	for _, m := range original {
		if m.Role == RoleSystem {
			msgs = append(msgs, m)
		}
	}
	msgs = append(msgs, Message{
		Role: RoleUser,
		Content: "Your previous response was cut off before the JSON was complete. " +
			"It ended with:\n\n" + tail + "\n\n" +
			"Continue exactly from that point. Do not repeat anything already written, " +
			"do not restart the JSON and do not add any commentary.",
	})
	return msgs
}
