package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/curricula-api/internal/domain"
	"github.com/phrazzld/curricula-api/internal/platform/logger"
	"github.com/phrazzld/curricula-api/internal/store"
)

// PostgresSkillStore implements store.SkillStore.
type PostgresSkillStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.SkillStore = (*PostgresSkillStore)(nil)

// NewPostgresSkillStore creates a skill store over db.
func NewPostgresSkillStore(db store.DBTX, logger *slog.Logger) *PostgresSkillStore {
	if db == nil {
		panic("db cannot be nil")
	}
	return &PostgresSkillStore{db: db, logger: componentLogger(logger, "skill_store")}
}

// Create implements store.SkillStore.Create.
func (s *PostgresSkillStore) Create(ctx context.Context, skill *domain.Skill) error {
	if err := skill.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	prereqs, err := toJSONB(skill.Prerequisites)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO skills (id, language_id, name, description, position, cefr_level, prerequisites, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		skill.ID, skill.LanguageID, skill.Name, skill.Description, skill.Position,
		string(skill.Tier), prereqs, skill.CreatedAt)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to create skill",
			slog.String("skill_id", skill.ID.String()),
			slog.String("error", err.Error()))
		return writeError("skill", "create", err)
	}
	return nil
}

// LinkToCourse implements store.SkillStore.LinkToCourse.
func (s *PostgresSkillStore) LinkToCourse(ctx context.Context, link domain.CourseSkill) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO course_skills (course_id, skill_id, position, estimated_hours)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (course_id, skill_id)
		DO UPDATE SET position = EXCLUDED.position, estimated_hours = EXCLUDED.estimated_hours`,
		link.CourseID, link.SkillID, link.Position, link.EstimatedHours)
	if err != nil {
		return writeError("course skill", "link", err)
	}
	return nil
}

// ListByCourse implements store.SkillStore.ListByCourse.
func (s *PostgresSkillStore) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*domain.Skill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.language_id, s.name, s.description, s.position, s.cefr_level, s.prerequisites, s.created_at
		FROM skills s
		JOIN course_skills cs ON cs.skill_id = s.id
		WHERE cs.course_id = $1
		ORDER BY cs.position, s.seq`,
		courseID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	skills := []*domain.Skill{}
	for rows.Next() {
		var (
			sk      domain.Skill
			tier    string
			prereqs []byte
		)
		if err := rows.Scan(&sk.ID, &sk.LanguageID, &sk.Name, &sk.Description, &sk.Position,
			&tier, &prereqs, &sk.CreatedAt); err != nil {
			return nil, MapError(err)
		}
		sk.Tier = domain.ProficiencyTier(tier)
		if sk.Prerequisites, err = fromJSONB[uuid.UUID](prereqs); err != nil {
			return nil, err
		}
		skills = append(skills, &sk)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return skills, nil
}
