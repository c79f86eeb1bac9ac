package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/phrazzld/curricula-api/internal/generation"
)

// Dimension names.
const (
	DimensionGrammar     = "grammar"
	DimensionProgression = "progression"
	DimensionCultural    = "cultural"
	DimensionDialect     = "dialect"
)

// maxDialectPhrases bounds the phrases and the cultural notes sent to the
// dialect scorer.
const maxDialectPhrases = 20

// Score is one scorer's assessment of a sample.
type Score struct {
	Value        int
	Issues       []string
	Improvements []string
}

// Scorer rates a sample along a single quality dimension.
type Scorer interface {
	// Name returns the dimension name.
	Name() string

	// Score rates sample, charging any generative calls to ledger.
	Score(ctx context.Context, ledger *generation.Ledger, sample *Sample) (*Score, error)
}

// ScorerError records the failure of one scorer. It is folded into the
// report and never returned from the Engine.
type ScorerError struct {
	Scorer string
	Err    error
}

// Error implements the error interface for ScorerError.
func (e *ScorerError) Error() string {
	return fmt.Sprintf("%s validation failed: %v", e.Scorer, e.Err)
}

// Unwrap returns the underlying error.
func (e *ScorerError) Unwrap() error {
	return e.Err
}

// rubricResponse is the record every rubric prompt asks for.
type rubricResponse struct {
	Score        flexScore  `json:"score"`
	Issues       stringList `json:"issues"`
	Improvements stringList `json:"improvements"`
}

// flexScore accepts a score written as a number or a numeric string.
type flexScore float64

func (f *flexScore) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexScore(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("score is neither a number nor a string: %s", b)
	}
	n, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if err != nil {
		return fmt.Errorf("score %q is not numeric", s)
	}
	*f = flexScore(n)
	return nil
}

// stringList accepts a list of strings, a single string, or a list of
// objects whose string fields are joined.
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	var list []json.RawMessage
	if err := json.Unmarshal(b, &list); err != nil {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*l = nil
			return nil
		}
		if s != "" {
			*l = stringList{s}
		}
		return nil
	}

	out := make(stringList, 0, len(list))
	for _, raw := range list {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if s != "" {
				out = append(out, s)
			}
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err == nil {
			if s := joinFields(obj); s != "" {
				out = append(out, s)
			}
		}
	}
	*l = out
	return nil
}

func joinFields(obj map[string]any) string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ": ")
}

func clampScore(v float64) int {
	return int(math.Max(0, math.Min(100, math.Round(v))))
}

// rubricScorer asks the generative service to score a sample against a
// rubric prompt.
type rubricScorer struct {
	name      string
	completer *generation.Completer
	prompts   *generation.Templates
	opts      generation.Options

	// data builds the prompt data for a sample
	data func(s *Sample) any
	// shortCircuit returns a score without a generative call when the
	// sample has nothing to assess along this dimension
	shortCircuit func(s *Sample) *Score
}

func (r *rubricScorer) Name() string {
	return r.name
}

func (r *rubricScorer) Score(ctx context.Context, ledger *generation.Ledger, sample *Sample) (*Score, error) {
	if r.shortCircuit != nil {
		if s := r.shortCircuit(sample); s != nil {
			return s, nil
		}
	}

	msgs, err := r.prompts.Messages(r.name, r.data(sample))
	if err != nil {
		return nil, err
	}

	var resp rubricResponse
	if err := r.completer.CompleteInto(ctx, ledger, generation.Request{
		Operation: generation.OpValidatePrefix + r.name,
		Messages:  msgs,
		Options:   r.opts,
		Shape:     generation.ShapeObject,
	}, &resp); err != nil {
		return nil, err
	}

	return &Score{
		Value:        clampScore(float64(resp.Score)),
		Issues:       resp.Issues,
		Improvements: resp.Improvements,
	}, nil
}

func newGrammarScorer(c *generation.Completer, t *generation.Templates, opts generation.Options) Scorer {
	return &rubricScorer{
		name:      DimensionGrammar,
		completer: c,
		prompts:   t,
		opts:      opts,
		data: func(s *Sample) any {
			return map[string]any{"Course": s.Course, "Language": s.Language, "Lessons": s.Lessons}
		},
	}
}

func newProgressionScorer(c *generation.Completer, t *generation.Templates, opts generation.Options) Scorer {
	return &rubricScorer{
		name:      DimensionProgression,
		completer: c,
		prompts:   t,
		opts:      opts,
		data: func(s *Sample) any {
			return map[string]any{
				"Course":       s.Course,
				"Language":     s.Language,
				"Lessons":      s.Lessons,
				"TotalLessons": s.TotalLessons,
			}
		},
	}
}

func newCulturalScorer(c *generation.Completer, t *generation.Templates, opts generation.Options) Scorer {
	return &rubricScorer{
		name:      DimensionCultural,
		completer: c,
		prompts:   t,
		opts:      opts,
		data: func(s *Sample) any {
			return map[string]any{"Language": s.Language, "Notes": s.CulturalNotes()}
		},
		shortCircuit: func(s *Sample) *Score {
			if len(s.CulturalNotes()) > 0 {
				return nil
			}
			return &Score{
				Value:        100,
				Issues:       []string{},
				Improvements: []string{"Consider adding more cultural context to enhance learning"},
			}
		},
	}
}

func newDialectScorer(
	c *generation.Completer,
	t *generation.Templates,
	opts generation.Options,
	profile LocaleProfile,
) Scorer {
	return &rubricScorer{
		name:      DimensionDialect,
		completer: c,
		prompts:   t,
		opts:      opts,
		data: func(s *Sample) any {
			phrases := s.Phrases()
			if len(phrases) > maxDialectPhrases {
				phrases = phrases[:maxDialectPhrases]
			}
			notes := s.CulturalNotes()
			if len(notes) > maxDialectPhrases {
				notes = notes[:maxDialectPhrases]
			}
			return map[string]any{"Language": s.Language, "Profile": profile, "Phrases": phrases, "Notes": notes}
		},
		shortCircuit: func(s *Sample) *Score {
			if len(s.Phrases()) > 0 {
				return nil
			}
			return &Score{
				Value:        100,
				Issues:       []string{},
				Improvements: []string{fmt.Sprintf("No %s phrases found for dialect validation", s.Language.Name)},
			}
		},
	}
}
