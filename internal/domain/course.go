package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ProficiencyTier is a CEFR band.
type ProficiencyTier string

// Supported proficiency tiers.
const (
	TierA1 ProficiencyTier = "A1"
	TierA2 ProficiencyTier = "A2"
	TierB1 ProficiencyTier = "B1"
	TierB2 ProficiencyTier = "B2"
)

// Supported course levels.
const (
	MinCourseLevel = 1
	MaxCourseLevel = 4
)

var levelTiers = map[int]ProficiencyTier{
	1: TierA1,
	2: TierA2,
	3: TierB1,
	4: TierB2,
}

// ValidateLevel returns ErrInvalidLevel for levels outside 1..4.
func ValidateLevel(level int) error {
	if level < MinCourseLevel || level > MaxCourseLevel {
		return fmt.Errorf("%w: %d (must be %d-%d)", ErrInvalidLevel, level, MinCourseLevel, MaxCourseLevel)
	}
	return nil
}

// TierForLevel maps a course level to its proficiency tier.
func TierForLevel(level int) (ProficiencyTier, error) {
	if err := ValidateLevel(level); err != nil {
		return "", err
	}
	return levelTiers[level], nil
}

// BaselineHours is the instructional hours a course of the given level is
// planned around.
func BaselineHours(level int) int {
	return 40 + (level-1)*10
}

// Course is one level of instruction in a Language. A Course is created at
// most once per (language, level).
type Course struct {
	ID                 uuid.UUID       `json:"id"`
	LanguageID         uuid.UUID       `json:"language_id"`
	Level              int             `json:"level"`
	Name               string          `json:"name"`
	Code               string          `json:"code"`
	Description        string          `json:"description"`
	Tier               ProficiencyTier `json:"cefr_level"`
	LearningObjectives []string        `json:"learning_objectives"`
	EstimatedHours     int             `json:"estimated_hours"`
	Active             bool            `json:"active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// NewCourse creates a Course for languageID at level. The tier is derived
// from the level and the estimated hours default to the level baseline.
func NewCourse(languageID uuid.UUID, level int, name string) (*Course, error) {
	tier, err := TierForLevel(level)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	course := &Course{
		ID:                 uuid.New(),
		LanguageID:         languageID,
		Level:              level,
		Name:               name,
		Tier:               tier,
		LearningObjectives: []string{},
		EstimatedHours:     BaselineHours(level),
		Active:             true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := course.Validate(); err != nil {
		return nil, err
	}

	return course, nil
}

// Validate checks if the Course has valid data.
func (c *Course) Validate() error {
	if c.ID == uuid.Nil {
		return fmt.Errorf("%w: course id", ErrInvalidID)
	}
	if c.LanguageID == uuid.Nil {
		return fmt.Errorf("%w: course language id", ErrInvalidID)
	}
	if err := ValidateLevel(c.Level); err != nil {
		return err
	}
	if c.Name == "" {
		return fmt.Errorf("%w: course name", ErrEmptyContent)
	}
	return nil
}

// Touch marks the course as updated now.
func (c *Course) Touch() {
	c.UpdatedAt = time.Now().UTC()
}
