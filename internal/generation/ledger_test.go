package generation_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/phrazzld/curricula-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_TrackAndSummary(t *testing.T) {
	t.Parallel()

	l := generation.NewLedger(0)
	l.Track(generation.OpLessonContent, 0.015)
	l.Track(generation.OpCourseDetails, 0.01)
	l.Track(generation.OpLessonContent, 0.015)

	s := l.Summary()
	assert.InDelta(t, 0.04, s.Total, 1e-9)
	assert.InDelta(t, 0.04, l.Total(), 1e-9)
	require.Len(t, s.Breakdown, 2)

	assert.Equal(t, generation.OpCourseDetails, s.Breakdown[0].Operation)
	assert.Equal(t, 1, s.Breakdown[0].Calls)
	assert.Equal(t, generation.OpLessonContent, s.Breakdown[1].Operation)
	assert.InDelta(t, 0.03, s.Breakdown[1].Cost, 1e-9)
	assert.Equal(t, 2, s.Breakdown[1].Calls)
}

func TestLedger_ConcurrentTrack(t *testing.T) {
	t.Parallel()

	l := generation.NewLedger(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Track(generation.OpLessonContent, 0.5)
		}()
	}
	wg.Wait()

	assert.InDelta(t, 25.0, l.Total(), 1e-9)
	assert.Equal(t, 50, l.Summary().Breakdown[0].Calls)
}

func TestLedger_IndependentRuns(t *testing.T) {
	t.Parallel()

	a := generation.NewLedger(0)
	b := generation.NewLedger(0)
	a.Track(generation.OpCurriculumPlanning, 1)

	assert.Zero(t, b.Total())
	assert.Empty(t, b.Summary().Breakdown)
}

func TestLedger_CheckBudget(t *testing.T) {
	t.Parallel()

	unlimited := generation.NewLedger(0)
	unlimited.Track("x", 1000)
	assert.NoError(t, unlimited.CheckBudget())

	capped := generation.NewLedger(1)
	capped.Track("x", 0.5)
	assert.NoError(t, capped.CheckBudget())
	capped.Track("x", 0.5)

	err := capped.CheckBudget()
	require.Error(t, err)
	assert.True(t, errors.Is(err, generation.ErrBudgetExceeded))
}

func TestPricing_Cost(t *testing.T) {
	t.Parallel()

	p := generation.DefaultPricing()

	cost := p.Cost(generation.OpLessonContent, generation.Usage{InputTokens: 2000, OutputTokens: 1000})
	assert.InDelta(t, 0.005, cost, 1e-9)

	// no usage reported: flat estimate, continuations priced like their origin
	assert.InDelta(t, 0.02, p.Cost(generation.OpCurriculumPlanning, generation.Usage{}), 1e-9)
	assert.InDelta(t, 0.015,
		p.Cost(generation.OpLessonContent+generation.ContinuationSuffix, generation.Usage{}), 1e-9)
	assert.Zero(t, p.Cost("unknown", generation.Usage{}))
}

func TestServiceError_Timeout(t *testing.T) {
	t.Parallel()

	err := &generation.ServiceError{Operation: "x", Err: fmt.Errorf("slow: %w", context.DeadlineExceeded)}
	assert.True(t, err.Timeout())
	assert.True(t, generation.IsTimeout(err))
	assert.False(t, generation.IsTimeout(errors.New("other")))
}
