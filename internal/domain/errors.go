package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidLevel is returned when a course level is outside the supported range.
	ErrInvalidLevel = errors.New("invalid course level")

	// ErrEmptyPlan is returned when a curriculum plan contains no skills.
	ErrEmptyPlan = errors.New("curriculum plan has no skills")

	// ErrInvalidAssessmentType is returned when an assessment type is not valid.
	ErrInvalidAssessmentType = errors.New("invalid assessment type")
)
