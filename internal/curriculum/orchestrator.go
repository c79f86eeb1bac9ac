package curriculum

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/curricula-api/internal/domain"
	"github.com/phrazzld/curricula-api/internal/generation"
	"github.com/phrazzld/curricula-api/internal/platform/logger"
	"github.com/phrazzld/curricula-api/internal/store"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// Config tunes the generation pipeline.
type Config struct {
	// ContentItemsPerLesson is how many content items each lesson asks for.
	ContentItemsPerLesson int
	// ContentConcurrency bounds concurrent lesson content generation.
	// 1 processes lessons sequentially.
	ContentConcurrency int
	// CurriculumMaxTokens is the token budget of the planning call.
	CurriculumMaxTokens int
	// MaxTokens is the token budget of every other call.
	MaxTokens int
	// Temperature is the sampling temperature of every call.
	Temperature float64
	// MaxRunCost caps the estimated cost of one run. Zero means no cap.
	MaxRunCost float64
}

// DefaultConfig returns the reference pipeline settings.
func DefaultConfig() Config {
	return Config{
		ContentItemsPerLesson: 8,
		ContentConcurrency:    1,
		CurriculumMaxTokens:   8000,
		MaxTokens:             2000,
		Temperature:           0.3,
	}
}

// GenerateRequest identifies the course to generate.
type GenerateRequest struct {
	LanguageCode string `json:"languageCode"`
	LanguageName string `json:"languageName"`
	NativeName   string `json:"nativeName"`
	Level        int    `json:"level"`
}

// Validate checks the request.
func (r GenerateRequest) Validate() error {
	if strings.TrimSpace(r.LanguageCode) == "" {
		return fmt.Errorf("%w: language code is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.LanguageName) == "" {
		return fmt.Errorf("%w: language name is required", ErrInvalidRequest)
	}
	if err := domain.ValidateLevel(r.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// Result summarizes a completed generation run.
type Result struct {
	CourseID         uuid.UUID          `json:"courseId"`
	CourseName       string             `json:"courseName"`
	SkillsCount      int                `json:"skillsCount"`
	LessonsCount     int                `json:"lessonsCount"`
	ContentCount     int                `json:"contentCount"`
	AssessmentsCount int                `json:"assessmentsCount"`
	ElapsedSeconds   float64            `json:"elapsedSeconds"`
	EstimatedCost    float64            `json:"estimatedCost"`
	CostBreakdown    generation.Summary `json:"costBreakdown"`
	Success          bool               `json:"success"`
}

// Orchestrator generates complete courses. It holds no per-run state, so a
// single instance may serve concurrent runs; each run owns its own ledger.
type Orchestrator struct {
	stores    store.Stores
	completer *generation.Completer
	prompts   *generation.Templates
	cfg       Config
	logger    *slog.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(
	stores store.Stores,
	completer *generation.Completer,
	cfg Config,
	logger *slog.Logger,
) (*Orchestrator, error) {
	if completer == nil {
		return nil, errors.New("completer cannot be nil")
	}
	if stores.Languages == nil || stores.Courses == nil || stores.Skills == nil ||
		stores.Lessons == nil || stores.Content == nil || stores.Assessments == nil {
		return nil, errors.New("stores cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	prompts, err := generation.ParseTemplates(promptFS, "prompts/*.tmpl")
	if err != nil {
		return nil, err
	}

	if cfg.ContentItemsPerLesson <= 0 {
		cfg.ContentItemsPerLesson = DefaultConfig().ContentItemsPerLesson
	}
	if cfg.ContentConcurrency <= 0 {
		cfg.ContentConcurrency = 1
	}
	if cfg.CurriculumMaxTokens <= 0 {
		cfg.CurriculumMaxTokens = DefaultConfig().CurriculumMaxTokens
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}

	return &Orchestrator{
		stores:    stores,
		completer: completer,
		prompts:   prompts,
		cfg:       cfg,
		logger:    logger.With("component", "curriculum_orchestrator"),
	}, nil
}

// run carries the state of one generation run.
type run struct {
	req    GenerateRequest
	ledger *generation.Ledger
	log    *slog.Logger
}

// GenerateFullCourse runs all seven stages for req. Any stage failure aborts
// the run and is returned as a *StageError wrapping the originating error.
// Rows written by earlier stages are kept; language and course lookups are
// idempotent so the run can be re-invoked.
func (o *Orchestrator) GenerateFullCourse(ctx context.Context, req GenerateRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.LanguageCode = strings.ToLower(strings.TrimSpace(req.LanguageCode))

	start := time.Now()
	r := &run{
		req:    req,
		ledger: generation.NewLedger(o.cfg.MaxRunCost),
		log: logger.FromContextOrDefault(ctx, o.logger).With(
			"language_code", req.LanguageCode,
			"level", req.Level),
	}

	r.log.InfoContext(ctx, "starting course generation", "language", req.LanguageName)

	// 1. language
	lang, err := o.EnsureLanguageExists(ctx, req.LanguageCode, req.LanguageName, req.NativeName)
	if err != nil {
		return nil, o.fail(ctx, r, StageLanguage, err)
	}
	o.stageDone(ctx, r, StageLanguage, start, "language_id", lang.ID)

	// 2. course
	course, err := o.getOrCreateCourse(ctx, r, lang, req.Level)
	if err != nil {
		return nil, o.fail(ctx, r, StageCourse, err)
	}
	o.stageDone(ctx, r, StageCourse, start, "course_id", course.ID)

	// 3. plan
	plan, err := o.generatePlan(ctx, r, lang, course)
	if err != nil {
		return nil, o.fail(ctx, r, StagePlan, err)
	}
	o.stageDone(ctx, r, StagePlan, start,
		"skills_planned", len(plan.Skills),
		"lessons_planned", plan.LessonCount())

	// 4. skills and lessons
	skills, err := o.materializePlan(ctx, lang, course, plan)
	if err != nil {
		return nil, o.fail(ctx, r, StageSkills, err)
	}
	lessonCount := 0
	for _, s := range skills {
		lessonCount += len(s.lessons)
	}
	o.stageDone(ctx, r, StageSkills, start, "skills", len(skills), "lessons", lessonCount)

	// 5. lesson content
	contentCount, err := o.generateContent(ctx, r, lang, skills)
	if err != nil {
		return nil, o.fail(ctx, r, StageContent, err)
	}
	o.stageDone(ctx, r, StageContent, start, "content_items", contentCount)

	// 6. assessments
	assessments, err := o.createAssessments(ctx, course)
	if err != nil {
		return nil, o.fail(ctx, r, StageAssessments, err)
	}
	o.stageDone(ctx, r, StageAssessments, start, "assessments", len(assessments))

	// 7. linking
	if err := o.finalizeCourse(ctx, course); err != nil {
		return nil, o.fail(ctx, r, StageLinking, err)
	}
	o.stageDone(ctx, r, StageLinking, start)

	summary := r.ledger.Summary()
	result := &Result{
		CourseID:         course.ID,
		CourseName:       course.Name,
		SkillsCount:      len(skills),
		LessonsCount:     lessonCount,
		ContentCount:     contentCount,
		AssessmentsCount: len(assessments),
		ElapsedSeconds:   time.Since(start).Seconds(),
		EstimatedCost:    summary.Total,
		CostBreakdown:    summary,
		Success:          true,
	}

	r.log.InfoContext(ctx, "course generation completed",
		"course_id", result.CourseID,
		"skills", result.SkillsCount,
		"lessons", result.LessonsCount,
		"content_items", result.ContentCount,
		"assessments", result.AssessmentsCount,
		"elapsed_seconds", result.ElapsedSeconds,
		"estimated_cost", result.EstimatedCost)

	return result, nil
}

func (o *Orchestrator) stageDone(ctx context.Context, r *run, stage string, start time.Time, attrs ...any) {
	args := append([]any{
		"stage", stage,
		"elapsed_ms", time.Since(start).Milliseconds(),
	}, attrs...)
	r.log.InfoContext(ctx, "stage completed", args...)
}

func (o *Orchestrator) fail(ctx context.Context, r *run, stage string, err error) error {
	r.log.ErrorContext(ctx, "course generation failed",
		"stage", stage,
		"error", err,
		"estimated_cost", r.ledger.Total())
	return stageErr(stage, err)
}
