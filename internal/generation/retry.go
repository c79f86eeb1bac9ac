package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// Retry defaults, used when a policy carries invalid values.
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 2 * time.Second
)

// RetryPolicy retries transient provider errors with exponential backoff
// and jitter. Providers use it around a single API call; it is unrelated to
// the continuation budget of a Completer.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration

	// Sleep waits for d or until ctx is done. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryPolicy creates a policy from retry settings in whole seconds.
func NewRetryPolicy(maxRetries, delaySeconds int) RetryPolicy {
	return RetryPolicy{
		MaxRetries: maxRetries,
		BaseDelay:  time.Duration(delaySeconds) * time.Second,
	}
}

// IsPermanent reports whether err must not be retried.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrContentBlocked) ||
		errors.Is(err, ErrInvalidResponse) ||
		errors.Is(err, ErrInvalidConfig)
}

// Do calls fn until it succeeds, fails permanently or the retries run out.
// Once ctx is done its error is returned wrapped, so callers can still
// detect a deadline.
func (p RetryPolicy) Do(ctx context.Context, logger *slog.Logger, fn func(ctx context.Context) error) error {
	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", DefaultMaxRetries)
		maxRetries = DefaultMaxRetries
	}
	baseDelay := p.BaseDelay
	if baseDelay <= 0 {
		baseDelay = DefaultRetryDelay
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				logger.InfoContext(ctx, "provider call succeeded after retry", "attempt", attempt+1)
			}
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w", ErrTransientFailure, ctxErr)
		}
		if IsPermanent(err) {
			logger.WarnContext(ctx, "permanent provider error, not retrying", "error", err)
			return err
		}
		if attempt >= maxRetries {
			logger.WarnContext(ctx, "maximum retry attempts reached",
				"max_retries", maxRetries,
				"error", err)
			return fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				ErrTransientFailure, maxRetries, err)
		}

		// delay = base * 2^attempt * (0.5 + rand(0, 0.5))
		backoff := float64(baseDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + rand.Float64()*0.5))

		logger.InfoContext(ctx, "retrying provider call after delay",
			"attempt", attempt+1,
			"delay_ms", delay.Milliseconds(),
			"error", err)

		if err := sleep(ctx, delay); err != nil {
			return fmt.Errorf("%w: %w", ErrTransientFailure, err)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
