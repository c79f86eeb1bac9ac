package validation

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/curricula-api/internal/domain"
	"github.com/phrazzld/curricula-api/internal/generation"
	"github.com/phrazzld/curricula-api/internal/platform/logger"
	"github.com/phrazzld/curricula-api/internal/store"
	"golang.org/x/sync/errgroup"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// IssueNoLessons is reported for a course without lessons.
const IssueNoLessons = "course has no lessons"

// Config tunes the validation engine.
type Config struct {
	// Strict selects the strict thresholds unless a run overrides it.
	Strict      bool
	SampleSize  int
	MaxTokens   int
	Temperature float64
	// MaxRunCost caps the estimated cost of one run. Zero means no cap.
	MaxRunCost float64
}

// DefaultConfig returns the reference validation settings.
func DefaultConfig() Config {
	return Config{
		Strict:      true,
		SampleSize:  DefaultSampleSize,
		MaxTokens:   8000,
		Temperature: 0.3,
	}
}

// Options adjusts a single validation run.
type Options struct {
	// Strict overrides the configured mode when set.
	Strict *bool
}

// Engine validates generated courses.
type Engine struct {
	stores    store.Stores
	completer *generation.Completer
	prompts   *generation.Templates
	cfg       Config
	logger    *slog.Logger
	extra     []Scorer

	mu  sync.Mutex
	rnd *rand.Rand
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRand sets the random source used to fill lesson samples.
func WithRand(r *rand.Rand) EngineOption {
	return func(e *Engine) {
		e.rnd = r
	}
}

// WithScorers adds scorers that run after the built-in ones.
func WithScorers(scorers ...Scorer) EngineOption {
	return func(e *Engine) {
		e.extra = append(e.extra, scorers...)
	}
}

// NewEngine creates an Engine.
func NewEngine(
	stores store.Stores,
	completer *generation.Completer,
	cfg Config,
	logger *slog.Logger,
	opts ...EngineOption,
) (*Engine, error) {
	if completer == nil {
		return nil, errors.New("completer cannot be nil")
	}
	if stores.Courses == nil || stores.Languages == nil || stores.Skills == nil ||
		stores.Lessons == nil || stores.Content == nil || stores.Reports == nil {
		return nil, errors.New("stores cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	prompts, err := generation.ParseTemplates(promptFS, "prompts/*.tmpl")
	if err != nil {
		return nil, err
	}

	if cfg.SampleSize <= 0 {
		cfg.SampleSize = DefaultSampleSize
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}

	e := &Engine{
		stores:    stores,
		completer: completer,
		prompts:   prompts,
		cfg:       cfg,
		logger:    logger.With("component", "validation_engine"),
		rnd:       rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ValidateCourseContent scores the course with every applicable scorer and
// stores the resulting report. A course that does not exist yields an error
// wrapping store.ErrCourseNotFound; scorer failures are recorded in the
// report instead of being returned.
func (e *Engine) ValidateCourseContent(ctx context.Context, courseID uuid.UUID, opts Options) (*domain.ValidationReport, error) {
	strict := e.cfg.Strict
	if opts.Strict != nil {
		strict = *opts.Strict
	}
	thresholds := RelaxedThresholds()
	if strict {
		thresholds = StrictThresholds()
	}

	log := logger.FromContextOrDefault(ctx, e.logger).With("course_id", courseID, "strict", strict)
	start := time.Now()

	course, err := e.stores.Courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	lang, err := e.stores.Languages.GetByID(ctx, course.LanguageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course language: %w", err)
	}

	lessons, err := e.courseLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}

	report := &domain.ValidationReport{
		ID:              uuid.New(),
		CourseID:        courseID,
		Strict:          strict,
		Dimensions:      []domain.DimensionResult{},
		Issues:          []string{},
		Recommendations: []domain.Recommendation{},
		CreatedAt:       time.Now().UTC(),
	}

	if len(lessons) == 0 {
		log.WarnContext(ctx, "course has no lessons to validate")
		report.Issues = append(report.Issues, IssueNoLessons)
		e.finish(report, thresholds)
		return report, e.save(ctx, report)
	}

	sample, err := e.sample(ctx, course, lang, lessons)
	if err != nil {
		return nil, err
	}
	report.LessonsSampled = len(sample.Lessons)

	ledger := generation.NewLedger(e.cfg.MaxRunCost)
	report.Dimensions = e.runScorers(ctx, log, ledger, e.scorers(lang), sample, thresholds)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, d := range report.Dimensions {
		for _, issue := range d.Issues {
			report.Issues = append(report.Issues, d.Name+": "+issue)
		}
		if !d.Passed {
			report.Recommendations = append(report.Recommendations, recommendationFor(d))
		}
	}
	report.EstimatedCost = ledger.Total()
	e.finish(report, thresholds)

	log.InfoContext(ctx, "course validation completed",
		"aggregate_score", report.AggregateScore,
		"status", report.Status,
		"decision", report.Decision,
		"lessons_sampled", report.LessonsSampled,
		"estimated_cost", report.EstimatedCost,
		"elapsed_ms", time.Since(start).Milliseconds())

	return report, e.save(ctx, report)
}

// History returns the stored reports of a course, newest first.
func (e *Engine) History(ctx context.Context, courseID uuid.UUID, limit int) ([]*domain.ValidationReport, error) {
	if _, err := e.stores.Courses.GetByID(ctx, courseID); err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	reports, err := e.stores.Reports.ListByCourse(ctx, courseID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

func (e *Engine) finish(report *domain.ValidationReport, t Thresholds) {
	report.AggregateScore = Aggregate(report.Dimensions)
	report.Status = Status(report.AggregateScore, t)
	report.Decision = Decide(report.AggregateScore)
}

func (e *Engine) save(ctx context.Context, report *domain.ValidationReport) error {
	if err := e.stores.Reports.Create(ctx, report); err != nil {
		return fmt.Errorf("failed to store validation report: %w", err)
	}
	return nil
}

func (e *Engine) scorers(lang *domain.Language) []Scorer {
	opts := generation.Options{MaxTokens: e.cfg.MaxTokens, Temperature: e.cfg.Temperature}
	scorers := []Scorer{
		newGrammarScorer(e.completer, e.prompts, opts),
		newProgressionScorer(e.completer, e.prompts, opts),
		newCulturalScorer(e.completer, e.prompts, opts),
	}
	if profile, ok := ProfileFor(lang.Code); ok {
		scorers = append(scorers, newDialectScorer(e.completer, e.prompts, opts, profile))
	}
	return append(scorers, e.extra...)
}

// runScorers runs every scorer concurrently. Failures become zero-score
// dimensions; results keep the scorer order.
func (e *Engine) runScorers(
	ctx context.Context,
	log *slog.Logger,
	ledger *generation.Ledger,
	scorers []Scorer,
	sample *Sample,
	t Thresholds,
) []domain.DimensionResult {
	results := make([]domain.DimensionResult, len(scorers))

	var g errgroup.Group
	for i, s := range scorers {
		g.Go(func() error {
			threshold := t.For(s.Name())
			score, err := s.Score(ctx, ledger, sample)
			if err != nil {
				serr := &ScorerError{Scorer: s.Name(), Err: err}
				log.ErrorContext(ctx, "scorer failed", "scorer", s.Name(), "error", err)
				results[i] = domain.DimensionResult{
					Name:         s.Name(),
					Threshold:    threshold,
					Issues:       []string{serr.Error()},
					Improvements: []string{"Manual review required due to validation system error"},
					Error:        err.Error(),
				}
				return nil
			}

			results[i] = domain.DimensionResult{
				Name:         s.Name(),
				Score:        score.Value,
				Threshold:    threshold,
				Passed:       score.Value >= threshold,
				Issues:       nonNil(score.Issues),
				Improvements: nonNil(score.Improvements),
			}
			log.InfoContext(ctx, "scorer completed",
				"scorer", s.Name(),
				"score", score.Value,
				"passed", results[i].Passed)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

type courseLesson struct {
	skill  *domain.Skill
	lesson *domain.Lesson
}

// courseLessons returns the lessons of a course in course order.
func (e *Engine) courseLessons(ctx context.Context, courseID uuid.UUID) ([]courseLesson, error) {
	skills, err := e.stores.Skills.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}

	var out []courseLesson
	for _, skill := range skills {
		lessons, err := e.stores.Lessons.ListBySkill(ctx, skill.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list lessons: %w", err)
		}
		for _, l := range lessons {
			out = append(out, courseLesson{skill: skill, lesson: l})
		}
	}
	return out, nil
}

func (e *Engine) sample(
	ctx context.Context,
	course *domain.Course,
	lang *domain.Language,
	lessons []courseLesson,
) (*Sample, error) {
	e.mu.Lock()
	idx := sampleIndices(len(lessons), e.cfg.SampleSize, e.rnd)
	e.mu.Unlock()

	s := &Sample{
		Course:       course,
		Language:     lang,
		TotalLessons: len(lessons),
		Lessons:      make([]SampledLesson, 0, len(idx)),
	}
	for _, i := range idx {
		cl := lessons[i]
		items, err := e.stores.Content.ListByLesson(ctx, cl.lesson.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list lesson content: %w", err)
		}
		s.Lessons = append(s.Lessons, SampledLesson{
			Sequence: i + 1,
			Skill:    cl.skill,
			Lesson:   cl.lesson,
			Items:    items,
		})
	}
	return s, nil
}

func recommendationFor(d domain.DimensionResult) domain.Recommendation {
	rec := domain.Recommendation{
		Category:    d.Name,
		Priority:    domain.PriorityMedium,
		Suggestions: nonNil(d.Improvements),
	}
	switch d.Name {
	case DimensionGrammar:
		rec.Priority = domain.PriorityHigh
		rec.Description = "Grammar accuracy below standards"
	case DimensionProgression:
		rec.Priority = domain.PriorityHigh
		rec.Description = "Academic progression needs improvement"
	case DimensionCultural:
		rec.Description = "Cultural context could be improved"
	case DimensionDialect:
		rec.Description = "Dialect authenticity needs improvement"
	default:
		rec.Description = d.Name + " below standards"
	}
	return rec
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
