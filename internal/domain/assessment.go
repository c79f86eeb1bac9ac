package domain

import (
	"time"

	"github.com/google/uuid"
)

// AssessmentType distinguishes quizzes from exams.
type AssessmentType string

// Possible assessment types
const (
	AssessmentQuiz AssessmentType = "quiz"
	AssessmentExam AssessmentType = "exam"
)

// Assessment is a scored test attached to a Course.
type Assessment struct {
	ID               uuid.UUID      `json:"id"`
	CourseID         uuid.UUID      `json:"course_id"`
	Name             string         `json:"name"`
	Type             AssessmentType `json:"assessment_type"`
	MaxScore         int            `json:"max_score"`
	PassingScore     int            `json:"passing_score"`
	TimeLimitMinutes int            `json:"time_limit_minutes"`
	Instructions     string         `json:"instructions"`
	CreatedAt        time.Time      `json:"created_at"`
}

// Validate checks if the Assessment has valid data.
func (a *Assessment) Validate() error {
	if a.ID == uuid.Nil || a.CourseID == uuid.Nil {
		return ErrInvalidID
	}
	if a.Type != AssessmentQuiz && a.Type != AssessmentExam {
		return ErrInvalidAssessmentType
	}
	if a.PassingScore > a.MaxScore {
		return ErrValidation
	}
	return nil
}

// StandardAssessments returns the midterm quiz and final exam every course
// carries.
func StandardAssessments(course *Course) []*Assessment {
	now := time.Now().UTC()
	return []*Assessment{
		{
			ID:               uuid.New(),
			CourseID:         course.ID,
			Name:             course.Name + " Midterm",
			Type:             AssessmentQuiz,
			MaxScore:         100,
			PassingScore:     75,
			TimeLimitMinutes: 30,
			Instructions:     "Answer every question. Covers the skills of the first half of the course.",
			CreatedAt:        now,
		},
		{
			ID:               uuid.New(),
			CourseID:         course.ID,
			Name:             course.Name + " Final",
			Type:             AssessmentExam,
			MaxScore:         100,
			PassingScore:     80,
			TimeLimitMinutes: 45,
			Instructions:     "Comprehensive exam covering every skill in the course.",
			CreatedAt:        now,
		},
	}
}
