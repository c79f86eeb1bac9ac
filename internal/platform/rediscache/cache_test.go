package rediscache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/curricula-api/internal/generation"
	"github.com/phrazzld/curricula-api/internal/generation/generationtest"
	"github.com/phrazzld/curricula-api/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryKV is an in-process stand-in for a Redis client.
type memoryKV struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryKV) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memoryKV) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return redis.NewStatusResult("", m.err)
	}
	m.data[key] = string(value.([]byte))
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

type countingGenerator struct {
	calls int
	err   error
}

func (c *countingGenerator) Generate(
	_ context.Context,
	_ []generation.Message,
	operation string,
	_ generation.Options,
) (*generation.Response, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &generation.Response{
		Content: `{"op":"` + operation + `"}`,
		Usage:   generation.Usage{InputTokens: 10, OutputTokens: 5},
	}, nil
}

var msgs = []generation.Message{{Role: generation.RoleUser, Content: "hello"}}

func newCache(t *testing.T, next generation.Generator, client KV) *Generator {
	t.Helper()
	log, _ := logger.NewTestLogger(t)
	g, err := New(next, client, time.Hour, log)
	require.NoError(t, err)
	return g
}

func TestGenerate_CachesResponses(t *testing.T) {
	t.Parallel()
	next := &countingGenerator{}
	client := newMemoryKV()
	g := newCache(t, next, client)
	ctx := context.Background()

	first, err := g.Generate(ctx, msgs, generation.OpCourseDetails, generation.Options{MaxTokens: 100})
	require.NoError(t, err)
	second, err := g.Generate(ctx, msgs, generation.OpCourseDetails, generation.Options{MaxTokens: 100})
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first, second)

	key, err := Key(msgs, generation.OpCourseDetails, generation.Options{MaxTokens: 100})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, client.ttls[key])
}

func TestGenerate_DistinctRequests(t *testing.T) {
	t.Parallel()
	next := &countingGenerator{}
	g := newCache(t, next, newMemoryKV())
	ctx := context.Background()

	_, err := g.Generate(ctx, msgs, generation.OpCourseDetails, generation.Options{})
	require.NoError(t, err)
	_, err = g.Generate(ctx, msgs, generation.OpLessonContent, generation.Options{})
	require.NoError(t, err)
	_, err = g.Generate(ctx, msgs, generation.OpLessonContent, generation.Options{Temperature: 0.7})
	require.NoError(t, err)

	assert.Equal(t, 3, next.calls)
}

func TestGenerate_SkipsContinuations(t *testing.T) {
	t.Parallel()
	next := &countingGenerator{}
	client := newMemoryKV()
	g := newCache(t, next, client)
	op := generation.OpCurriculumPlanning + generation.ContinuationSuffix

	for range 2 {
		_, err := g.Generate(context.Background(), msgs, op, generation.Options{})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, next.calls)
	assert.Empty(t, client.data)
}

func TestGenerate_RedisUnavailable(t *testing.T) {
	t.Parallel()
	next := &countingGenerator{}
	client := newMemoryKV()
	client.err = errors.New("connection refused")
	g := newCache(t, next, client)

	resp, err := g.Generate(context.Background(), msgs, generation.OpCourseDetails, generation.Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Content)
	assert.Equal(t, 1, next.calls)
}

func TestGenerate_ErrorsNotCached(t *testing.T) {
	t.Parallel()
	next := &countingGenerator{err: generation.ErrTransientFailure}
	client := newMemoryKV()
	g := newCache(t, next, client)

	_, err := g.Generate(context.Background(), msgs, generation.OpCourseDetails, generation.Options{})
	assert.ErrorIs(t, err, generation.ErrTransientFailure)
	assert.Empty(t, client.data)
}

func TestGenerate_UnreadableEntry(t *testing.T) {
	t.Parallel()
	next := &countingGenerator{}
	client := newMemoryKV()
	key, err := Key(msgs, generation.OpCourseDetails, generation.Options{})
	require.NoError(t, err)
	client.data[key] = "not json"

	g := newCache(t, next, client)
	_, err = g.Generate(context.Background(), msgs, generation.OpCourseDetails, generation.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
}

func TestGenerate_IncompleteRepliesNotCached(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		shape   generation.Shape
	}{
		{"refusal", "Sorry, I cannot produce that.", generation.ShapeObject},
		{"truncated object", `{"name": "Albanian 1", "code": "AL`, generation.ShapeObject},
		{"object when array expected", `{"name": "ok"}`, generation.ShapeArray},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := generationtest.NewScripted(tt.content, tt.content)
			client := newMemoryKV()
			g := newCache(t, gen, client)
			opts := generation.Options{Shape: tt.shape}

			for range 2 {
				resp, err := g.Generate(context.Background(), msgs, generation.OpCourseDetails, opts)
				require.NoError(t, err)
				assert.Equal(t, tt.content, resp.Content)
			}
			assert.Equal(t, 2, gen.CallCount())
			assert.Empty(t, client.data)
		})
	}
}

func TestGenerate_RerunAfterGarbledReplyReachesProvider(t *testing.T) {
	t.Parallel()

	gen := generationtest.NewScripted("Sorry, I cannot produce that.", `{"name":"ok"}`)
	g := newCache(t, gen, newMemoryKV())
	c := generation.NewCompleter(g, generation.WithBudget(0))
	req := generation.Request{
		Operation: generation.OpCourseDetails,
		Messages:  msgs,
		Shape:     generation.ShapeObject,
	}

	_, err := c.Complete(context.Background(), nil, req)
	require.ErrorIs(t, err, generation.ErrParse)

	got, err := c.Complete(context.Background(), nil, req)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"ok"}`, got)
	assert.Equal(t, 2, gen.CallCount())

	// the valid reply is now served from the cache
	got, err = c.Complete(context.Background(), nil, req)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"ok"}`, got)
	assert.Equal(t, 2, gen.CallCount())
}

func TestGenerate_DiscardsIncompleteEntry(t *testing.T) {
	t.Parallel()
	next := &countingGenerator{}
	client := newMemoryKV()
	key, err := Key(msgs, generation.OpCourseDetails, generation.Options{})
	require.NoError(t, err)
	client.data[key] = `{"content":"no record here","usage":{"input_tokens":1,"output_tokens":1}}`

	g := newCache(t, next, client)
	resp, err := g.Generate(context.Background(), msgs, generation.OpCourseDetails, generation.Options{})
	require.NoError(t, err)
	assert.Equal(t, `{"op":"course-details"}`, resp.Content)
	assert.Equal(t, 1, next.calls)
}

func TestKey_IncludesShape(t *testing.T) {
	t.Parallel()
	obj, err := Key(msgs, "op", generation.Options{Shape: generation.ShapeObject})
	require.NoError(t, err)
	arr, err := Key(msgs, "op", generation.Options{Shape: generation.ShapeArray})
	require.NoError(t, err)
	assert.NotEqual(t, obj, arr)
}

func TestKey(t *testing.T) {
	t.Parallel()
	a, err := Key(msgs, "op", generation.Options{})
	require.NoError(t, err)
	b, err := Key(msgs, "op", generation.Options{})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Contains(t, a, KeyPrefix)
	assert.Len(t, a, len(KeyPrefix)+64)
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()
	log, _ := logger.NewTestLogger(t)

	_, err := New(nil, newMemoryKV(), time.Hour, log)
	assert.Error(t, err)
	_, err = New(&countingGenerator{}, nil, time.Hour, log)
	assert.Error(t, err)
	_, err = New(&countingGenerator{}, newMemoryKV(), time.Hour, nil)
	assert.Error(t, err)
}
