package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/curricula-api/internal/domain"
	"github.com/phrazzld/curricula-api/internal/store"
)

// PostgresLessonStore implements store.LessonStore.
type PostgresLessonStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.LessonStore = (*PostgresLessonStore)(nil)

// NewPostgresLessonStore creates a lesson store over db.
func NewPostgresLessonStore(db store.DBTX, logger *slog.Logger) *PostgresLessonStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresLessonStore{db: db, logger: componentLogger(logger, "lesson_store")}
}

// Create implements store.LessonStore.Create.
func (s *PostgresLessonStore) Create(ctx context.Context, l *domain.Lesson) error {
	if err := l.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	areas, err := toJSONB(l.ContentAreas)
	if err != nil {
		return err
	}
	prereqs, err := toJSONB(l.Prerequisites)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lessons (id, skill_id, name, position, difficulty_level, estimated_minutes,
			learning_focus, content_areas, prerequisites, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, l.SkillID, l.Name, l.Position, l.Difficulty, l.EstimatedMinutes,
		l.LearningFocus, areas, prereqs, l.CreatedAt)
	if err != nil {
		return writeError("lesson", "create", err)
	}
	return nil
}

// ListBySkill implements store.LessonStore.ListBySkill.
func (s *PostgresLessonStore) ListBySkill(ctx context.Context, skillID uuid.UUID) ([]*domain.Lesson, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, skill_id, name, position, difficulty_level, estimated_minutes,
			learning_focus, content_areas, prerequisites, created_at
		FROM lessons
		WHERE skill_id = $1
		ORDER BY position, seq`,
		skillID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	lessons := []*domain.Lesson{}
	for rows.Next() {
		var (
			l       domain.Lesson
			areas   []byte
			prereqs []byte
		)
		if err := rows.Scan(&l.ID, &l.SkillID, &l.Name, &l.Position, &l.Difficulty, &l.EstimatedMinutes,
			&l.LearningFocus, &areas, &prereqs, &l.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		if l.ContentAreas, err = fromJSONB[string](areas); err != nil {
			return nil, err
		}
		if l.Prerequisites, err = fromJSONB[uuid.UUID](prereqs); err != nil {
			return nil, err
		}
		lessons = append(lessons, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return lessons, nil
}

// CountByCourse implements store.LessonStore.CountByCourse.
func (s *PostgresLessonStore) CountByCourse(ctx context.Context, courseID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*)
		FROM lessons l
		JOIN course_skills cs ON cs.skill_id = l.skill_id
		WHERE cs.course_id = $1`,
		courseID).Scan(&n)
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}

// PostgresContentStore implements store.ContentStore.
type PostgresContentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.ContentStore = (*PostgresContentStore)(nil)

// NewPostgresContentStore creates a content item store over db.
func NewPostgresContentStore(db store.DBTX, logger *slog.Logger) *PostgresContentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresContentStore{db: db, logger: componentLogger(logger, "content_store")}
}

// Create implements store.ContentStore.Create.
func (s *PostgresContentStore) Create(ctx context.Context, c *domain.ContentItem) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	exercises, err := toJSONB(c.ExerciseTypes)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO content_items (id, lesson_id, english_phrase, target_phrase, pronunciation_guide,
			cultural_context, difficulty_score, exercise_types, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.LessonID, c.EnglishPhrase, c.TargetPhrase, c.PronunciationGuide,
		c.CulturalContext, c.DifficultyScore, exercises, c.CreatedAt)
	if err != nil {
		return writeError("content item", "create", err)
	}
	return nil
}

// ListByLesson implements store.ContentStore.ListByLesson.
func (s *PostgresContentStore) ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]*domain.ContentItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lesson_id, english_phrase, target_phrase, pronunciation_guide,
			cultural_context, difficulty_score, exercise_types, created_at
		FROM content_items
		WHERE lesson_id = $1
		ORDER BY seq`,
		lessonID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := []*domain.ContentItem{}
	for rows.Next() {
		var (
			c         domain.ContentItem
			exercises []byte
		)
		if err := rows.Scan(&c.ID, &c.LessonID, &c.EnglishPhrase, &c.TargetPhrase, &c.PronunciationGuide,
			&c.CulturalContext, &c.DifficultyScore, &exercises, &c.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		if c.ExerciseTypes, err = fromJSONB[string](exercises); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return items, nil
}

// CountByCourse implements store.ContentStore.CountByCourse.
func (s *PostgresContentStore) CountByCourse(ctx context.Context, courseID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*)
		FROM content_items ci
		JOIN lessons l ON l.id = ci.lesson_id
		JOIN course_skills cs ON cs.skill_id = l.skill_id
		WHERE cs.course_id = $1`,
		courseID).Scan(&n)
	if err != nil {
		return 0, MapError(err)
	}
	return n, nil
}
