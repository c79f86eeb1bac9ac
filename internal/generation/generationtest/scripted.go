// Package generationtest provides test doubles for generation.Generator.
package generationtest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/phrazzld/curricula-api/internal/generation"
)

// ErrScriptExhausted is returned when a ScriptedGenerator runs out of steps.
var ErrScriptExhausted = errors.New("scripted generator: no more responses")

// Step is one scripted reply.
type Step struct {
	Content string
	Usage   generation.Usage
	Err     error
}

// Call records one Generate invocation.
type Call struct {
	Operation string
	Messages  []generation.Message
	Options   generation.Options
}

// Prompt returns the concatenated content of the call's user messages.
func (c Call) Prompt() string {
	var b strings.Builder
	for _, m := range c.Messages {
		if m.Role == generation.RoleUser {
			b.WriteString(m.Content)
		}
	}
	return b.String()
}

// ScriptedGenerator implements generation.Generator for testing. Replies are
// taken from Steps in order. When RespondFn is set it is consulted first and
// takes precedence over the script.
type ScriptedGenerator struct {
	// RespondFn allows test cases to compute replies from the request
	RespondFn func(ctx context.Context, call Call) (*generation.Response, error)

	// Steps are replayed in order when RespondFn is nil
	Steps []Step

	mu    sync.Mutex
	next  int
	calls []Call
}

// NewScripted creates a generator that returns contents in order.
func NewScripted(contents ...string) *ScriptedGenerator {
	g := &ScriptedGenerator{}
	for _, c := range contents {
		g.Steps = append(g.Steps, Step{Content: c})
	}
	return g
}

// Generate implements generation.Generator.
func (g *ScriptedGenerator) Generate(
	ctx context.Context,
	messages []generation.Message,
	operation string,
	opts generation.Options,
) (*generation.Response, error) {
	call := Call{
		Operation: operation,
		Messages:  append([]generation.Message(nil), messages...),
		Options:   opts,
	}

	g.mu.Lock()
	g.calls = append(g.calls, call)
	fn := g.RespondFn
	var step *Step
	if fn == nil && g.next < len(g.Steps) {
		step = &g.Steps[g.next]
		g.next++
	}
	g.mu.Unlock()

	if fn != nil {
		return fn(ctx, call)
	}
	if step == nil {
		return nil, ErrScriptExhausted
	}
	if step.Err != nil {
		return nil, step.Err
	}
	return &generation.Response{Content: step.Content, Usage: step.Usage}, nil
}

// Calls returns a copy of the recorded calls.
func (g *ScriptedGenerator) Calls() []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Call(nil), g.calls...)
}

// CallCount returns the number of Generate invocations.
func (g *ScriptedGenerator) CallCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// CountOperation returns how many calls carried the given operation tag.
func (g *ScriptedGenerator) CountOperation(operation string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c.Operation == operation {
			n++
		}
	}
	return n
}
