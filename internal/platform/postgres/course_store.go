package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/curricula-api/internal/domain"
	"github.com/phrazzld/curricula-api/internal/platform/logger"
	"github.com/phrazzld/curricula-api/internal/store"
)

// PostgresCourseStore implements store.CourseStore.
type PostgresCourseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.CourseStore = (*PostgresCourseStore)(nil)

// NewPostgresCourseStore creates a course store over db.
func NewPostgresCourseStore(db store.DBTX, logger *slog.Logger) *PostgresCourseStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresCourseStore{db: db, logger: componentLogger(logger, "course_store")}
}

const courseColumns = `id, language_id, level, name, code, description, cefr_level,
	learning_objectives, estimated_hours, active, created_at, updated_at`

// Create implements store.CourseStore.Create.
// A second course for the same language and level returns store.ErrCourseExists.
func (s *PostgresCourseStore) Create(ctx context.Context, c *domain.Course) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	objectives, err := toJSONB(c.LearningObjectives)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO courses (`+courseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.LanguageID, c.Level, c.Name, c.Code, c.Description, string(c.Tier),
		objectives, c.EstimatedHours, c.Active, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		log.Warn("failed to create course",
			slog.String("language_id", c.LanguageID.String()),
			slog.Int("level", c.Level),
			slog.String("error", err.Error()))
		return mapCreateError("course", err, store.ErrCourseExists)
	}

	log.Info("course created", slog.String("course_id", c.ID.String()), slog.String("name", c.Name))
	return nil
}

// GetByID implements store.CourseStore.GetByID.
func (s *PostgresCourseStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	return scanCourse(s.db.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
}

// FindByLanguageAndLevel implements store.CourseStore.FindByLanguageAndLevel.
func (s *PostgresCourseStore) FindByLanguageAndLevel(
	ctx context.Context,
	languageID uuid.UUID,
	level int,
) (*domain.Course, error) {
	return scanCourse(s.db.QueryRowContext(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE language_id = $1 AND level = $2`,
		languageID, level))
}

// Update implements store.CourseStore.Update. The language and level of a
// course are immutable.
func (s *PostgresCourseStore) Update(ctx context.Context, c *domain.Course) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	existing, err := s.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if existing.LanguageID != c.LanguageID || existing.Level != c.Level {
		return fmt.Errorf("%w: language and level of a course cannot change", store.ErrUpdateFailed)
	}

	objectives, err := toJSONB(c.LearningObjectives)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE courses
		SET name = $2, code = $3, description = $4, cefr_level = $5,
			learning_objectives = $6, estimated_hours = $7, active = $8, updated_at = $9
		WHERE id = $1`,
		c.ID, c.Name, c.Code, c.Description, string(c.Tier),
		objectives, c.EstimatedHours, c.Active, c.UpdatedAt)
	if err != nil {
		return writeError("course", "update", err)
	}
	return checkRowsAffected(result, store.ErrCourseNotFound)
}

func scanCourse(row *sql.Row) (*domain.Course, error) {
	var (
		c          domain.Course
		tier       string
		objectives []byte
	)
	err := row.Scan(&c.ID, &c.LanguageID, &c.Level, &c.Name, &c.Code, &c.Description, &tier,
		&objectives, &c.EstimatedHours, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrCourseNotFound
	}
	if err != nil {
		return nil, MapError(err)
	}
	c.Tier = domain.ProficiencyTier(tier)
	if c.LearningObjectives, err = fromJSONB[string](objectives); err != nil {
		return nil, err
	}
	return &c, nil
}
