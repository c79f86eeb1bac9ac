package curriculum

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/curricula-api/internal/store"
)

// GenerationStatus reports how far generation of a course has progressed.
type GenerationStatus struct {
	CourseID     uuid.UUID `json:"courseId"`
	Exists       bool      `json:"exists"`
	SkillsCount  int       `json:"skillsCount"`
	LessonsCount int       `json:"lessonsCount"`
	ContentCount int       `json:"contentCount"`
	IsComplete   bool      `json:"isComplete"`
}

// GenerationStatus counts the stored curriculum of courseID. An unknown
// course yields a status with Exists false rather than an error.
func (o *Orchestrator) GenerationStatus(ctx context.Context, courseID uuid.UUID) (*GenerationStatus, error) {
	status := &GenerationStatus{CourseID: courseID}

	if _, err := o.stores.Courses.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, store.ErrCourseNotFound) {
			return status, nil
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	status.Exists = true

	skills, err := o.stores.Skills.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	status.SkillsCount = len(skills)

	if status.LessonsCount, err = o.stores.Lessons.CountByCourse(ctx, courseID); err != nil {
		return nil, fmt.Errorf("failed to count lessons: %w", err)
	}
	if status.ContentCount, err = o.stores.Content.CountByCourse(ctx, courseID); err != nil {
		return nil, fmt.Errorf("failed to count content: %w", err)
	}

	status.IsComplete = status.SkillsCount > 0 && status.LessonsCount > 0
	return status, nil
}
