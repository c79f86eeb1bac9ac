package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "generic error",
			err:      errors.New("some error"),
			expected: false,
		},
		{
			name:     "ErrNotFound",
			err:      ErrNotFound,
			expected: true,
		},
		{
			name:     "ErrCourseNotFound",
			err:      ErrCourseNotFound,
			expected: true,
		},
		{
			name:     "wrapped ErrLanguageNotFound",
			err:      fmt.Errorf("failed to find language: %w", ErrLanguageNotFound),
			expected: true,
		},
		{
			name:     "ErrLessonNotFound inside StoreError",
			err:      NewStoreError("lesson", "get", "missing", ErrLessonNotFound),
			expected: true,
		},
		{
			name:     "duplicate is not not-found",
			err:      ErrCourseExists,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFoundError(tt.err); got != tt.expected {
				t.Errorf("IsNotFoundError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "ErrDuplicate",
			err:      ErrDuplicate,
			expected: true,
		},
		{
			name:     "wrapped ErrCourseExists",
			err:      fmt.Errorf("failed to create course: %w", ErrCourseExists),
			expected: true,
		},
		{
			name:     "ErrLanguageExists",
			err:      ErrLanguageExists,
			expected: true,
		},
		{
			name:     "not found",
			err:      ErrSkillNotFound,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicateError(tt.err); got != tt.expected {
				t.Errorf("IsDuplicateError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStoreError(t *testing.T) {
	originalErr := errors.New("database connection failed")
	storeErr := NewStoreError("course", "create", "database error", originalErr)

	expectedErrorString := "create operation on course failed: database error: database connection failed"
	if got := storeErr.Error(); got != expectedErrorString {
		t.Errorf("StoreError.Error() = %v, want %v", got, expectedErrorString)
	}

	if !errors.Is(storeErr, originalErr) {
		t.Errorf("errors.Is() not recognizing the wrapped error")
	}

	bare := NewStoreError("course", "update", "no rows", nil)
	if got := bare.Error(); got != "update operation on course failed: no rows" {
		t.Errorf("StoreError.Error() = %v", got)
	}
}
