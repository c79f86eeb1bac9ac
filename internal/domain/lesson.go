package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Lesson belongs to a Skill.
type Lesson struct {
	ID               uuid.UUID   `json:"id"`
	SkillID          uuid.UUID   `json:"skill_id"`
	Name             string      `json:"name"`
	Position         int         `json:"position"`
	Difficulty       int         `json:"difficulty_level"`
	EstimatedMinutes int         `json:"estimated_minutes"`
	LearningFocus    string      `json:"learning_focus"`
	ContentAreas     []string    `json:"content_areas"`
	Prerequisites    []uuid.UUID `json:"prerequisites"`
	CreatedAt        time.Time   `json:"created_at"`
}

// Validate checks if the Lesson has valid data.
func (l *Lesson) Validate() error {
	if l.ID == uuid.Nil {
		return fmt.Errorf("%w: lesson id", ErrInvalidID)
	}
	if l.SkillID == uuid.Nil {
		return fmt.Errorf("%w: lesson skill id", ErrInvalidID)
	}
	if l.Name == "" {
		return fmt.Errorf("%w: lesson name", ErrEmptyContent)
	}
	if l.Difficulty < MinDifficulty || l.Difficulty > MaxDifficulty {
		return fmt.Errorf("%w: lesson difficulty %d", ErrValidation, l.Difficulty)
	}
	return nil
}

// ContentItem is one phrase taught in a Lesson.
type ContentItem struct {
	ID                 uuid.UUID `json:"id"`
	LessonID           uuid.UUID `json:"lesson_id"`
	EnglishPhrase      string    `json:"english_phrase"`
	TargetPhrase       string    `json:"target_phrase"`
	PronunciationGuide string    `json:"pronunciation_guide"`
	CulturalContext    string    `json:"cultural_context"`
	DifficultyScore    int       `json:"difficulty_score"`
	ExerciseTypes      []string  `json:"exercise_types"`
	CreatedAt          time.Time `json:"created_at"`
}

// Validate checks if the ContentItem has valid data.
func (c *ContentItem) Validate() error {
	if c.ID == uuid.Nil {
		return fmt.Errorf("%w: content id", ErrInvalidID)
	}
	if c.LessonID == uuid.Nil {
		return fmt.Errorf("%w: content lesson id", ErrInvalidID)
	}
	if c.EnglishPhrase == "" || c.TargetPhrase == "" {
		return fmt.Errorf("%w: content phrase", ErrEmptyContent)
	}
	return nil
}
