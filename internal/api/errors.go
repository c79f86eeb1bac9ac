package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/curricula-api/internal/api/shared"
	"github.com/phrazzld/curricula-api/internal/curriculum"
	"github.com/phrazzld/curricula-api/internal/domain"
	"github.com/phrazzld/curricula-api/internal/generation"
	"github.com/phrazzld/curricula-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, store.ErrCourseNotFound),
		errors.Is(err, store.ErrLanguageNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, curriculum.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidLevel),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing summary of err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var stageErr *curriculum.StageError
	switch {
	case errors.Is(err, store.ErrCourseNotFound):
		return "Course not found"
	case errors.Is(err, store.ErrLanguageNotFound):
		return "Language not found"
	case errors.Is(err, curriculum.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidLevel):
		return "Invalid generation request"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid course ID"
	case errors.Is(err, domain.ErrValidation):
		return "Invalid request parameters"
	case errors.Is(err, generation.ErrBudgetExceeded):
		return "Generation cost budget exceeded"
	case errors.Is(err, context.DeadlineExceeded):
		return "Request timed out"
	case errors.As(err, &stageErr):
		return fmt.Sprintf("Course generation failed at stage %s", stageErr.Stage)
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the status and safe message for err and logs the
// redacted error. A failed generation stage also returns its redacted
// message as details.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := MapErrorToStatusCode(err), GetSafeErrorMessage(err)

	var stageErr *curriculum.StageError
	if errors.As(err, &stageErr) {
		shared.RespondWithErrorDetails(w, r, status, message, err)
		return
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError turns validator errors into a message naming the
// offending fields and rules.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", lowerFirst(fe.Field()), tagMessage(fe.Tag())))
	}
	return "Validation error: " + strings.Join(parts, "; ")
}

func tagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too small"
	case "max":
		return "too large"
	case "alpha":
		return "must contain letters only"
	default:
		return "validation failed"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
