package generation_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/curricula-api/internal/generation"
	"github.com/phrazzld/curricula-api/internal/generation/generationtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planRequest() generation.Request {
	return generation.Request{
		Operation: generation.OpCurriculumPlanning,
		Messages: []generation.Message{
			{Role: generation.RoleSystem, Content: "Respond only with JSON."},
			{Role: generation.RoleUser, Content: "Plan a course."},
		},
		Options: generation.Options{MaxTokens: 100, Temperature: 0.3},
		Shape:   generation.ShapeObject,
	}
}

func TestCompleter_CompleteFirstTry(t *testing.T) {
	t.Parallel()

	gen := generationtest.NewScripted("```json\n{\"skills\": []}\n```")
	c := generation.NewCompleter(gen)

	got, err := c.Complete(context.Background(), generation.NewLedger(0), planRequest())
	require.NoError(t, err)
	assert.Equal(t, `{"skills": []}`, got)
	assert.Equal(t, 1, gen.CallCount())
}

func TestCompleter_ContinuationCompletesRecord(t *testing.T) {
	t.Parallel()

	gen := generationtest.NewScripted(
		`{"skills": [{"name": "Greetings"}, {"name": "Fam`,
		`ily"}]}`,
	)
	c := generation.NewCompleter(gen)

	got, err := c.Complete(context.Background(), generation.NewLedger(0), planRequest())
	require.NoError(t, err)
	assert.Equal(t, `{"skills": [{"name": "Greetings"}, {"name": "Family"}]}`, got)

	calls := gen.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, generation.OpCurriculumPlanning, calls[0].Operation)
	assert.Equal(t, generation.OpCurriculumPlanning+generation.ContinuationSuffix, calls[1].Operation)

	// the continuation quotes the tail and keeps the system instructions
	assert.Contains(t, calls[1].Prompt(), `{"name": "Fam`)
	assert.Equal(t, generation.RoleSystem, calls[1].Messages[0].Role)
	assert.Equal(t, calls[0].Options, calls[1].Options)
}

func TestCompleter_ContinuationQuotesOnlyTheTail(t *testing.T) {
	t.Parallel()

	head := `{"filler": "` + strings.Repeat("a", 500)
	gen := generationtest.NewScripted(head+"TAILMARK", `"}`)
	c := generation.NewCompleter(gen)

	_, err := c.Complete(context.Background(), generation.NewLedger(0), planRequest())
	require.NoError(t, err)

	prompt := gen.Calls()[1].Prompt()
	assert.Contains(t, prompt, "TAILMARK")
	assert.NotContains(t, prompt, `{"filler"`)
}

func TestCompleter_FailsAfterExactBudget(t *testing.T) {
	t.Parallel()

	for _, budget := range []int{0, 1, 3, 5} {
		t.Run(fmt.Sprintf("budget %d", budget), func(t *testing.T) {
			gen := &generationtest.ScriptedGenerator{
				RespondFn: func(_ context.Context, call generationtest.Call) (*generation.Response, error) {
					if generation.IsContinuation(call.Operation) {
						return &generation.Response{Content: `, "more": [1,`}, nil
					}
					return &generation.Response{Content: `{"skills": [`}, nil
				},
			}
			c := generation.NewCompleter(gen, generation.WithBudget(budget))

			_, err := c.Complete(context.Background(), generation.NewLedger(0), planRequest())
			require.Error(t, err)

			var perr *generation.ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, budget, perr.Attempts)
			assert.True(t, errors.Is(err, generation.ErrParse))

			assert.Equal(t, budget+1, gen.CallCount())
			assert.Equal(t, budget, gen.CountOperation(generation.OpCurriculumPlanning+generation.ContinuationSuffix))
		})
	}
}

func TestCompleter_DefaultBudgetIsThree(t *testing.T) {
	t.Parallel()

	gen := generationtest.NewScripted(`{"a": [`, `1,`, `2,`, `3,`, `4]}`)
	c := generation.NewCompleter(gen)
	assert.Equal(t, 3, c.Budget())

	_, err := c.Complete(context.Background(), generation.NewLedger(0), planRequest())
	require.Error(t, err)
	assert.Equal(t, 4, gen.CallCount())
}

func TestCompleter_InvalidRecordFailsWithoutContinuation(t *testing.T) {
	t.Parallel()

	gen := generationtest.NewScripted(`I am unable to produce that plan.`)
	c := generation.NewCompleter(gen)

	_, err := c.Complete(context.Background(), generation.NewLedger(0), planRequest())
	var perr *generation.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 0, perr.Attempts)
	assert.Equal(t, generation.OpCurriculumPlanning, perr.Operation)
	assert.Equal(t, 1, gen.CallCount())
	assert.EqualError(t, err,
		"parse curriculum-planning: response is not a valid object: no object found in response")
}

func TestCompleter_InvalidJSONReason(t *testing.T) {
	t.Parallel()

	gen := generationtest.NewScripted(`{"skills": [1, 2,, 3]}`)
	c := generation.NewCompleter(gen, generation.WithBudget(0))

	_, err := c.Complete(context.Background(), generation.NewLedger(0), planRequest())
	require.ErrorIs(t, err, generation.ErrParse)
	assert.Contains(t, err.Error(), "parse curriculum-planning: ")
	assert.NotContains(t, err.Error(), "parse :")
}

func TestCompleter_PassesShapeToGenerator(t *testing.T) {
	t.Parallel()

	gen := generationtest.NewScripted(`[{"english_phrase": "hi"}]`)
	c := generation.NewCompleter(gen)

	req := planRequest()
	req.Shape = generation.ShapeArray
	_, err := c.Complete(context.Background(), generation.NewLedger(0), req)
	require.NoError(t, err)

	calls := gen.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, generation.ShapeArray, calls[0].Options.Shape)
	assert.Equal(t, 100, calls[0].Options.MaxTokens)
}

func TestCompleter_ServiceErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	boom := errors.New("quota exhausted")
	gen := &generationtest.ScriptedGenerator{Steps: []generationtest.Step{{Err: boom}}}
	c := generation.NewCompleter(gen)

	_, err := c.Complete(context.Background(), generation.NewLedger(0), planRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, generation.ErrGenerationFailed))
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, generation.ErrParse))

	var serr *generation.ServiceError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, generation.OpCurriculumPlanning, serr.Operation)
	assert.False(t, serr.Timeout())
	assert.Equal(t, 1, gen.CallCount())
}

func TestCompleter_TimeoutConsumesAnAttempt(t *testing.T) {
	t.Parallel()

	t.Run("initial call times out then succeeds", func(t *testing.T) {
		gen := &generationtest.ScriptedGenerator{Steps: []generationtest.Step{
			{Err: context.DeadlineExceeded},
			{Content: `{"ok": true}`},
		}}
		c := generation.NewCompleter(gen)

		got, err := c.Complete(context.Background(), generation.NewLedger(0), planRequest())
		require.NoError(t, err)
		assert.Equal(t, `{"ok": true}`, got)

		// nothing to continue from, so the original request is reissued
		calls := gen.Calls()
		require.Len(t, calls, 2)
		assert.Equal(t, generation.OpCurriculumPlanning, calls[1].Operation)
	})

	t.Run("continuation times out then succeeds", func(t *testing.T) {
		gen := &generationtest.ScriptedGenerator{Steps: []generationtest.Step{
			{Content: `{"a": [1,`},
			{Err: context.DeadlineExceeded},
			{Content: ` 2]}`},
		}}
		c := generation.NewCompleter(gen)

		got, err := c.Complete(context.Background(), generation.NewLedger(0), planRequest())
		require.NoError(t, err)
		assert.Equal(t, `{"a": [1, 2]}`, got)
		assert.Equal(t, 2, gen.CountOperation(generation.OpCurriculumPlanning+generation.ContinuationSuffix))
	})

	t.Run("every call times out", func(t *testing.T) {
		gen := &generationtest.ScriptedGenerator{
			RespondFn: func(context.Context, generationtest.Call) (*generation.Response, error) {
				return nil, context.DeadlineExceeded
			},
		}
		c := generation.NewCompleter(gen, generation.WithBudget(2))

		_, err := c.Complete(context.Background(), generation.NewLedger(0), planRequest())
		assert.True(t, errors.Is(err, generation.ErrParse))
		assert.Equal(t, 3, gen.CallCount())
	})

	t.Run("request timeout applied per call", func(t *testing.T) {
		gen := &generationtest.ScriptedGenerator{
			RespondFn: func(ctx context.Context, _ generationtest.Call) (*generation.Response, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
		}
		c := generation.NewCompleter(gen,
			generation.WithBudget(1),
			generation.WithRequestTimeout(10*time.Millisecond))

		_, err := c.Complete(context.Background(), generation.NewLedger(0), planRequest())
		assert.True(t, errors.Is(err, generation.ErrParse))
		assert.Equal(t, 2, gen.CallCount())
	})
}

func TestCompleter_CancelledContextStops(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &generationtest.ScriptedGenerator{
		RespondFn: func(ctx context.Context, _ generationtest.Call) (*generation.Response, error) {
			return nil, ctx.Err()
		},
	}
	c := generation.NewCompleter(gen)

	_, err := c.Complete(ctx, generation.NewLedger(0), planRequest())
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, gen.CallCount())
}

func TestCompleter_TracksCostOfEveryCall(t *testing.T) {
	t.Parallel()

	usage := generation.Usage{InputTokens: 1000, OutputTokens: 1000}
	gen := &generationtest.ScriptedGenerator{Steps: []generationtest.Step{
		{Content: `{"a": [`, Usage: usage},
		{Content: `1]}`, Usage: usage},
	}}
	c := generation.NewCompleter(gen, generation.WithPricing(generation.Pricing{
		InputPer1K:  0.001,
		OutputPer1K: 0.002,
	}))

	ledger := generation.NewLedger(0)
	_, err := c.Complete(context.Background(), ledger, planRequest())
	require.NoError(t, err)

	summary := ledger.Summary()
	assert.InDelta(t, 0.006, summary.Total, 1e-9)
	require.Len(t, summary.Breakdown, 2)
	assert.Equal(t, generation.OpCurriculumPlanning, summary.Breakdown[0].Operation)
	assert.InDelta(t, 0.003, summary.Breakdown[0].Cost, 1e-9)
	assert.Equal(t, generation.OpCurriculumPlanning+generation.ContinuationSuffix, summary.Breakdown[1].Operation)
}

func TestCompleter_StopsWhenBudgetExceeded(t *testing.T) {
	t.Parallel()

	usage := generation.Usage{InputTokens: 1000, OutputTokens: 1000}
	gen := &generationtest.ScriptedGenerator{Steps: []generationtest.Step{
		{Content: `{"a": [`, Usage: usage},
		{Content: `1]}`, Usage: usage},
	}}
	c := generation.NewCompleter(gen)

	_, err := c.Complete(context.Background(), generation.NewLedger(0.001), planRequest())
	assert.True(t, errors.Is(err, generation.ErrBudgetExceeded))
	assert.Equal(t, 1, gen.CallCount())
}

func TestCompleter_CompleteInto(t *testing.T) {
	t.Parallel()

	gen := generationtest.NewScripted(`{"name": "Basics", "level": 2}`, `{"name": 5}`)
	c := generation.NewCompleter(gen)

	var rec struct {
		Name  string `json:"name"`
		Level int    `json:"level"`
	}
	require.NoError(t, c.CompleteInto(context.Background(), nil, planRequest(), &rec))
	assert.Equal(t, "Basics", rec.Name)
	assert.Equal(t, 2, rec.Level)

	// well-formed JSON with the wrong field types is still a parse failure
	err := c.CompleteInto(context.Background(), nil, planRequest(), &rec)
	assert.True(t, errors.Is(err, generation.ErrParse))
}
