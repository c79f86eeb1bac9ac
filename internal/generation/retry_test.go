package generation_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/phrazzld/curricula-api/internal/generation"
	"github.com/phrazzld/curricula-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(delays *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestRetryPolicy_Do(t *testing.T) {
	t.Parallel()
	log, _ := logger.NewTestLogger(t)
	transient := errors.New("503 unavailable")

	t.Run("succeeds after transient errors", func(t *testing.T) {
		var delays []time.Duration
		p := generation.RetryPolicy{MaxRetries: 3, BaseDelay: time.Second, Sleep: noSleep(&delays)}

		calls := 0
		err := p.Do(context.Background(), log, func(context.Context) error {
			calls++
			if calls < 3 {
				return transient
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		require.Len(t, delays, 2)
		assert.GreaterOrEqual(t, delays[0], 500*time.Millisecond)
		assert.LessOrEqual(t, delays[0], time.Second)
		assert.GreaterOrEqual(t, delays[1], time.Second)
		assert.LessOrEqual(t, delays[1], 2*time.Second)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var delays []time.Duration
		p := generation.RetryPolicy{MaxRetries: 2, BaseDelay: time.Second, Sleep: noSleep(&delays)}

		calls := 0
		err := p.Do(context.Background(), log, func(context.Context) error {
			calls++
			return transient
		})
		assert.ErrorIs(t, err, generation.ErrTransientFailure)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent errors are not retried", func(t *testing.T) {
		var delays []time.Duration
		p := generation.RetryPolicy{MaxRetries: 5, Sleep: noSleep(&delays)}

		calls := 0
		err := p.Do(context.Background(), log, func(context.Context) error {
			calls++
			return fmt.Errorf("%w: safety", generation.ErrContentBlocked)
		})
		assert.ErrorIs(t, err, generation.ErrContentBlocked)
		assert.Equal(t, 1, calls)
		assert.Empty(t, delays)
	})

	t.Run("deadline stays detectable", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
		defer cancel()
		<-ctx.Done()

		p := generation.RetryPolicy{MaxRetries: 5}
		err := p.Do(ctx, log, func(ctx context.Context) error { return ctx.Err() })
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.True(t, generation.IsTimeout(&generation.ServiceError{Operation: "x", Err: err}))
	})
}
