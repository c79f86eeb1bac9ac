package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/curricula-api/internal/domain"
)

// LanguageStore defines the interface for language persistence.
type LanguageStore interface {
	// Create saves a new language.
	// Returns ErrLanguageExists if a language with the same code exists.
	Create(ctx context.Context, lang *domain.Language) error

	// FindByCode retrieves a language by its unique code.
	// Returns ErrLanguageNotFound if it does not exist.
	FindByCode(ctx context.Context, code string) (*domain.Language, error)

	// GetByID retrieves a language by ID.
	// Returns ErrLanguageNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Language, error)
}

// CourseStore defines the interface for course persistence.
type CourseStore interface {
	// Create saves a new course.
	// Returns ErrCourseExists if a course for the same language and level exists,
	// and ErrReferenceMissing if the language does not exist.
	Create(ctx context.Context, course *domain.Course) error

	// GetByID retrieves a course by ID.
	// Returns ErrCourseNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error)

	// FindByLanguageAndLevel retrieves the course for a language and level.
	// Returns ErrCourseNotFound if it does not exist.
	FindByLanguageAndLevel(ctx context.Context, languageID uuid.UUID, level int) (*domain.Course, error)

	// Update saves changes to an existing course.
	// Returns ErrCourseNotFound if it does not exist.
	Update(ctx context.Context, course *domain.Course) error
}

// SkillStore defines the interface for skill persistence.
type SkillStore interface {
	// Create saves a new skill.
	// Returns ErrReferenceMissing if its language does not exist.
	Create(ctx context.Context, skill *domain.Skill) error

	// LinkToCourse attaches a skill to a course. Linking the same pair twice
	// updates the link's position and hours.
	// Returns ErrReferenceMissing if the course or skill does not exist.
	LinkToCourse(ctx context.Context, link domain.CourseSkill) error

	// ListByCourse returns the skills linked to a course ordered by link position.
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.Skill, error)
}

// LessonStore defines the interface for lesson persistence.
type LessonStore interface {
	// Create saves a new lesson.
	// Returns ErrReferenceMissing if its skill does not exist.
	Create(ctx context.Context, lesson *domain.Lesson) error

	// ListBySkill returns a skill's lessons ordered by position.
	ListBySkill(ctx context.Context, skillID uuid.UUID) ([]*domain.Lesson, error)

	// CountByCourse counts the lessons of every skill linked to a course.
	CountByCourse(ctx context.Context, courseID uuid.UUID) (int, error)
}

// ContentStore defines the interface for content item persistence.
type ContentStore interface {
	// Create saves a new content item.
	// Returns ErrReferenceMissing if its lesson does not exist.
	Create(ctx context.Context, item *domain.ContentItem) error

	// ListByLesson returns a lesson's content items in creation order.
	ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]*domain.ContentItem, error)

	// CountByCourse counts the content items in every lesson of a course.
	CountByCourse(ctx context.Context, courseID uuid.UUID) (int, error)
}

// AssessmentStore defines the interface for assessment persistence.
type AssessmentStore interface {
	// Create saves a new assessment.
	// Returns ErrReferenceMissing if its course does not exist.
	Create(ctx context.Context, a *domain.Assessment) error

	// ListByCourse returns a course's assessments in creation order.
	ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.Assessment, error)
}

// ReportStore defines the interface for validation report persistence.
// Reports are insert-only.
type ReportStore interface {
	// Create saves a new report.
	// Returns ErrReferenceMissing if its course does not exist.
	Create(ctx context.Context, report *domain.ValidationReport) error

	// ListByCourse returns a course's reports newest first. A limit of zero
	// or less returns all of them.
	ListByCourse(ctx context.Context, courseID uuid.UUID, limit int) ([]*domain.ValidationReport, error)
}

// Stores bundles every store the pipeline needs.
type Stores struct {
	Languages   LanguageStore
	Courses     CourseStore
	Skills      SkillStore
	Lessons     LessonStore
	Content     ContentStore
	Assessments AssessmentStore
	Reports     ReportStore
}
