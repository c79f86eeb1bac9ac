package curriculum

import (
	"errors"
	"fmt"
)

// Stage names, in execution order.
const (
	StageLanguage    = "language"
	StageCourse      = "course"
	StagePlan        = "curriculum-plan"
	StageSkills      = "skills-and-lessons"
	StageContent     = "lesson-content"
	StageAssessments = "assessments"
	StageLinking     = "linking"
)

// ErrInvalidRequest is returned when a generation request fails validation.
var ErrInvalidRequest = errors.New("invalid generation request")

// StageError reports the stage at which a generation run was aborted. The
// originating error is kept verbatim and is reachable through errors.Is/As.
type StageError struct {
	Stage string
	Err   error
}

// Error implements the error interface for StageError.
func (e *StageError) Error() string {
	return fmt.Sprintf("course generation failed at stage %s: %v", e.Stage, e.Err)
}

// Unwrap returns the originating error.
func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, err error) error {
	return &StageError{Stage: stage, Err: err}
}
