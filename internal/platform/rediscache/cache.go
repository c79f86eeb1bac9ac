// Package rediscache caches generation responses in Redis.
package rediscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/curricula-api/internal/generation"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every cache entry.
const KeyPrefix = "curricula:gen:"

// KV is the part of the Redis client the cache uses.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Connect opens a Redis client from a redis:// URL and checks that the
// server answers.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// Generator wraps a generation.Generator and serves repeated requests from
// Redis. Continuation calls always go to the wrapped generator, and only
// replies holding a complete record of the requested shape are stored, so a
// re-run after a garbled or truncated reply reaches the provider again.
// Redis failures are logged and never fail a call.
type Generator struct {
	next   generation.Generator
	client KV
	ttl    time.Duration
	logger *slog.Logger
}

var _ generation.Generator = (*Generator)(nil)

// New wraps next with a cache whose entries expire after ttl.
func New(next generation.Generator, client KV, ttl time.Duration, logger *slog.Logger) (*Generator, error) {
	if next == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Generator{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "generation_cache"),
	}, nil
}

// Generate returns a cached response for an identical earlier request, or
// calls the wrapped generator and stores its response.
func (g *Generator) Generate(
	ctx context.Context,
	messages []generation.Message,
	operation string,
	opts generation.Options,
) (*generation.Response, error) {
	if generation.IsContinuation(operation) {
		return g.next.Generate(ctx, messages, operation, opts)
	}

	key, err := Key(messages, operation, opts)
	if err != nil {
		return nil, err
	}

	if resp, ok := g.lookup(ctx, key, operation, opts.Shape); ok {
		return resp, nil
	}

	resp, err := g.next.Generate(ctx, messages, operation, opts)
	if err != nil {
		return nil, err
	}
	if !complete(resp, opts.Shape) {
		g.logger.DebugContext(ctx, "not caching incomplete response", "operation", operation)
		return resp, nil
	}
	g.store(ctx, key, operation, resp)
	return resp, nil
}

func complete(resp *generation.Response, shape generation.Shape) bool {
	return resp != nil && generation.Classify(resp.Content, shape) == generation.StateComplete
}

func (g *Generator) lookup(ctx context.Context, key, operation string, shape generation.Shape) (*generation.Response, bool) {
	raw, err := g.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		g.logger.WarnContext(ctx, "cache lookup failed", "operation", operation, "error", err)
		return nil, false
	}

	var resp generation.Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		g.logger.WarnContext(ctx, "discarding unreadable cache entry", "operation", operation, "error", err)
		return nil, false
	}
	if !complete(&resp, shape) {
		g.logger.WarnContext(ctx, "discarding incomplete cache entry", "operation", operation)
		return nil, false
	}
	g.logger.DebugContext(ctx, "cache hit", "operation", operation)
	return &resp, true
}

func (g *Generator) store(ctx context.Context, key, operation string, resp *generation.Response) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := g.client.Set(ctx, key, raw, g.ttl).Err(); err != nil {
		g.logger.WarnContext(ctx, "cache store failed", "operation", operation, "error", err)
	}
}

// Key derives the cache key of a request.
func Key(messages []generation.Message, operation string, opts generation.Options) (string, error) {
	raw, err := json.Marshal(struct {
		Operation string               `json:"operation"`
		Messages  []generation.Message `json:"messages"`
		Options   generation.Options   `json:"options"`
	}{operation, messages, opts})
	if err != nil {
		return "", fmt.Errorf("failed to encode cache key: %w", err)
	}
	sum := sha256.Sum256(raw)
	return KeyPrefix + hex.EncodeToString(sum[:]), nil
}
