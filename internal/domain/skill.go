package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Skill is a unit of competence within a Language. Skills are shared across
// courses through CourseSkill links.
type Skill struct {
	ID            uuid.UUID       `json:"id"`
	LanguageID    uuid.UUID       `json:"language_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Position      int             `json:"position"`
	Tier          ProficiencyTier `json:"cefr_level"`
	Prerequisites []uuid.UUID     `json:"prerequisites"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Validate checks if the Skill has valid data.
func (s *Skill) Validate() error {
	if s.ID == uuid.Nil {
		return fmt.Errorf("%w: skill id", ErrInvalidID)
	}
	if s.LanguageID == uuid.Nil {
		return fmt.Errorf("%w: skill language id", ErrInvalidID)
	}
	if s.Name == "" {
		return fmt.Errorf("%w: skill name", ErrEmptyContent)
	}
	return nil
}

// CourseSkill links a Skill into a Course at a position.
type CourseSkill struct {
	CourseID       uuid.UUID `json:"course_id"`
	SkillID        uuid.UUID `json:"skill_id"`
	Position       int       `json:"position"`
	EstimatedHours float64   `json:"estimated_hours"`
}
