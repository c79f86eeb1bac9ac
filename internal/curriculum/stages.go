package curriculum

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/phrazzld/curricula-api/internal/domain"
	"github.com/phrazzld/curricula-api/internal/generation"
	"github.com/phrazzld/curricula-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// EnsureLanguageExists returns the language with code, creating it first if
// needed. Concurrent callers racing on the same code all get the same row.
func (o *Orchestrator) EnsureLanguageExists(ctx context.Context, code, name, nativeName string) (*domain.Language, error) {
	code = strings.ToLower(strings.TrimSpace(code))

	lang, err := o.stores.Languages.FindByCode(ctx, code)
	if err == nil {
		return lang, nil
	}
	if !errors.Is(err, store.ErrLanguageNotFound) {
		return nil, fmt.Errorf("failed to look up language %s: %w", code, err)
	}

	lang, err = domain.NewLanguage(code, name, nativeName)
	if err != nil {
		return nil, err
	}
	if err := o.stores.Languages.Create(ctx, lang); err != nil {
		if errors.Is(err, store.ErrLanguageExists) {
			return o.stores.Languages.FindByCode(ctx, code)
		}
		return nil, fmt.Errorf("failed to create language %s: %w", code, err)
	}

	o.logger.InfoContext(ctx, "language created", "language_id", lang.ID, "code", code)
	return lang, nil
}

// GetOrCreateCourse returns the course of lang at level, generating its
// metadata and creating it first if needed. Generation cost is charged to a
// ledger private to this call.
func (o *Orchestrator) GetOrCreateCourse(ctx context.Context, lang *domain.Language, level int) (*domain.Course, error) {
	r := &run{
		ledger: generation.NewLedger(o.cfg.MaxRunCost),
		log:    o.logger,
	}
	return o.getOrCreateCourse(ctx, r, lang, level)
}

// courseDetails is the generated course metadata.
type courseDetails struct {
	Name               string   `json:"name"`
	Code               string   `json:"code"`
	Description        string   `json:"description"`
	Tier               string   `json:"cefr_level"`
	LearningObjectives []string `json:"learning_objectives"`
	EstimatedHours     float64  `json:"estimated_hours"`
}

func (o *Orchestrator) getOrCreateCourse(ctx context.Context, r *run, lang *domain.Language, level int) (*domain.Course, error) {
	course, err := o.stores.Courses.FindByLanguageAndLevel(ctx, lang.ID, level)
	if err == nil {
		r.log.InfoContext(ctx, "using existing course", "course_id", course.ID)
		return course, nil
	}
	if !errors.Is(err, store.ErrCourseNotFound) {
		return nil, fmt.Errorf("failed to look up course: %w", err)
	}

	tier, err := domain.TierForLevel(level)
	if err != nil {
		return nil, err
	}

	msgs, err := o.prompts.Messages("course_details", map[string]any{
		"LanguageName":  lang.Name,
		"NativeName":    lang.NativeName,
		"Level":         level,
		"Tier":          tier,
		"BaselineHours": domain.BaselineHours(level),
	})
	if err != nil {
		return nil, err
	}

	var details courseDetails
	if err := o.completer.CompleteInto(ctx, r.ledger, generation.Request{
		Operation: generation.OpCourseDetails,
		Messages:  msgs,
		Options:   o.options(o.cfg.MaxTokens),
		Shape:     generation.ShapeObject,
	}, &details); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(details.Name)
	if name == "" {
		name = fmt.Sprintf("%s %d", lang.Name, level)
	}

	course, err = domain.NewCourse(lang.ID, level, name)
	if err != nil {
		return nil, err
	}
	course.Code = details.Code
	course.Description = details.Description
	if details.LearningObjectives != nil {
		course.LearningObjectives = details.LearningObjectives
	}
	if details.EstimatedHours > 0 {
		course.EstimatedHours = int(math.Round(details.EstimatedHours))
	}

	if err := o.stores.Courses.Create(ctx, course); err != nil {
		if errors.Is(err, store.ErrCourseExists) {
			return o.stores.Courses.FindByLanguageAndLevel(ctx, lang.ID, level)
		}
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	r.log.InfoContext(ctx, "course created", "course_id", course.ID, "name", course.Name)
	return course, nil
}

func (o *Orchestrator) generatePlan(ctx context.Context, r *run, lang *domain.Language, course *domain.Course) (*domain.CurriculumPlan, error) {
	msgs, err := o.prompts.Messages("curriculum_plan", map[string]any{
		"Course":       course,
		"LanguageName": lang.Name,
		"NativeName":   lang.NativeName,
	})
	if err != nil {
		return nil, err
	}

	var plan domain.CurriculumPlan
	if err := o.completer.CompleteInto(ctx, r.ledger, generation.Request{
		Operation: generation.OpCurriculumPlanning,
		Messages:  msgs,
		Options:   o.options(o.cfg.CurriculumMaxTokens),
		Shape:     generation.ShapeObject,
	}, &plan); err != nil {
		return nil, err
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	plan.ApplyDefaults(course.Tier)
	return &plan, nil
}

// plannedSkill is a persisted skill together with its persisted lessons.
type plannedSkill struct {
	skill   *domain.Skill
	lessons []*domain.Lesson
}

func (o *Orchestrator) materializePlan(
	ctx context.Context,
	lang *domain.Language,
	course *domain.Course,
	plan *domain.CurriculumPlan,
) ([]plannedSkill, error) {
	// ids are assigned up front so prerequisites can point forward
	ids := make(map[int]uuid.UUID, len(plan.Skills))
	for _, sp := range plan.Skills {
		if _, dup := ids[sp.Position]; !dup {
			ids[sp.Position] = uuid.New()
		}
	}

	out := make([]plannedSkill, 0, len(plan.Skills))
	seen := make(map[int]bool, len(plan.Skills))
	for _, sp := range plan.Skills {
		id := ids[sp.Position]
		if seen[sp.Position] {
			// a duplicate position gets its own skill
			id = uuid.New()
		}
		seen[sp.Position] = true

		skill := &domain.Skill{
			ID:            id,
			LanguageID:    lang.ID,
			Name:          strings.TrimSpace(sp.Name),
			Description:   sp.Description,
			Position:      sp.Position,
			Tier:          sp.Tier,
			Prerequisites: o.resolvePrerequisites(ctx, sp, ids),
		}
		if err := o.stores.Skills.Create(ctx, skill); err != nil {
			return nil, fmt.Errorf("failed to create skill %q: %w", skill.Name, err)
		}
		if err := o.stores.Skills.LinkToCourse(ctx, domain.CourseSkill{
			CourseID:       course.ID,
			SkillID:        skill.ID,
			Position:       sp.Position,
			EstimatedHours: sp.EstimatedHours,
		}); err != nil {
			return nil, fmt.Errorf("failed to link skill %q: %w", skill.Name, err)
		}

		ps := plannedSkill{skill: skill}
		var previous *domain.Lesson
		for _, lp := range sp.Lessons {
			lesson := &domain.Lesson{
				ID:               uuid.New(),
				SkillID:          skill.ID,
				Name:             strings.TrimSpace(lp.Name),
				Position:         lp.Position,
				Difficulty:       lp.Difficulty,
				EstimatedMinutes: lp.EstimatedMinutes,
				LearningFocus:    lp.LearningFocus,
				ContentAreas:     lp.ContentAreas,
				Prerequisites:    []uuid.UUID{},
			}
			if previous != nil {
				lesson.Prerequisites = []uuid.UUID{previous.ID}
			}
			if err := o.stores.Lessons.Create(ctx, lesson); err != nil {
				return nil, fmt.Errorf("failed to create lesson %q: %w", lesson.Name, err)
			}
			ps.lessons = append(ps.lessons, lesson)
			previous = lesson
		}
		out = append(out, ps)
	}
	return out, nil
}

// resolvePrerequisites maps prerequisite positions to skill ids. Positions
// that name no planned skill, or the skill itself, are dropped.
func (o *Orchestrator) resolvePrerequisites(ctx context.Context, sp domain.SkillPlan, ids map[int]uuid.UUID) []uuid.UUID {
	prereqs := make([]uuid.UUID, 0, len(sp.Prerequisites))
	for _, pos := range sp.Prerequisites {
		id, ok := ids[pos]
		if !ok || pos == sp.Position {
			o.logger.WarnContext(ctx, "dropping unknown skill prerequisite",
				"skill", sp.Name,
				"prerequisite_position", pos)
			continue
		}
		prereqs = append(prereqs, id)
	}
	return prereqs
}

// generateContent fills every lesson with content items. A lesson whose
// content cannot be generated or parsed is logged and left empty; budget,
// cancellation and persistence failures abort the stage.
func (o *Orchestrator) generateContent(ctx context.Context, r *run, lang *domain.Language, skills []plannedSkill) (int, error) {
	var total atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.ContentConcurrency)

	for _, ps := range skills {
		for _, lesson := range ps.lessons {
			skill := ps.skill
			g.Go(func() error {
				n, err := o.lessonContent(gctx, r, lang, skill, lesson)
				if err != nil {
					if isLocalFailure(gctx, err) {
						r.log.WarnContext(gctx, "lesson content generation failed, continuing",
							"lesson_id", lesson.ID,
							"lesson", lesson.Name,
							"error", err)
						return nil
					}
					return err
				}
				total.Add(int64(n))
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return int(total.Load()), err
	}
	return int(total.Load()), nil
}

// isLocalFailure reports whether err only affects the lesson it came from.
func isLocalFailure(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, generation.ErrBudgetExceeded) {
		return false
	}
	return errors.Is(err, generation.ErrParse) || errors.Is(err, generation.ErrGenerationFailed)
}

func (o *Orchestrator) lessonContent(
	ctx context.Context,
	r *run,
	lang *domain.Language,
	skill *domain.Skill,
	lesson *domain.Lesson,
) (int, error) {
	msgs, err := o.prompts.Messages("lesson_content", map[string]any{
		"Count":        o.cfg.ContentItemsPerLesson,
		"Lesson":       lesson,
		"Skill":        skill,
		"LanguageName": lang.Name,
		"NativeName":   lang.NativeName,
	})
	if err != nil {
		return 0, err
	}

	var drafts []domain.ContentDraft
	if err := o.completer.CompleteInto(ctx, r.ledger, generation.Request{
		Operation: generation.OpLessonContent,
		Messages:  msgs,
		Options:   o.options(o.cfg.MaxTokens),
		Shape:     generation.ShapeArray,
	}, &drafts); err != nil {
		return 0, err
	}

	created := 0
	for _, d := range drafts {
		if created == o.cfg.ContentItemsPerLesson {
			break
		}
		item := d.ToItem(lesson.ID)
		if err := item.Validate(); err != nil {
			r.log.DebugContext(ctx, "skipping invalid content item",
				"lesson_id", lesson.ID,
				"error", err)
			continue
		}
		if err := o.stores.Content.Create(ctx, item); err != nil {
			return created, fmt.Errorf("failed to create content item: %w", err)
		}
		created++
	}
	return created, nil
}

func (o *Orchestrator) createAssessments(ctx context.Context, course *domain.Course) ([]*domain.Assessment, error) {
	assessments := domain.StandardAssessments(course)
	for _, a := range assessments {
		if err := o.stores.Assessments.Create(ctx, a); err != nil {
			return nil, fmt.Errorf("failed to create assessment %q: %w", a.Name, err)
		}
	}
	return assessments, nil
}

func (o *Orchestrator) finalizeCourse(ctx context.Context, course *domain.Course) error {
	course.Touch()
	if err := o.stores.Courses.Update(ctx, course); err != nil {
		return fmt.Errorf("failed to finalize course: %w", err)
	}
	return nil
}

func (o *Orchestrator) options(maxTokens int) generation.Options {
	return generation.Options{MaxTokens: maxTokens, Temperature: o.cfg.Temperature}
}
