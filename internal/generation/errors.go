package generation

import (
	"context"
	"errors"
	"fmt"
)

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when the generative service call itself fails
	ErrGenerationFailed = errors.New("generative service call failed")

	// ErrParse is returned when a structured record cannot be extracted from generated text
	ErrParse = errors.New("failed to parse structured response")

	// ErrInvalidResponse is returned when the provider response is malformed or empty
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the provider blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during generation")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrBudgetExceeded is returned when a run's accumulated cost passes its budget
	ErrBudgetExceeded = errors.New("generation budget exceeded")
)

// ParseError reports that no complete structured record could be obtained
// for an operation, either because the text never stopped looking truncated
// within the continuation budget or because the extracted region was not
// valid JSON.
type ParseError struct {
	Operation string // operation tag of the originating request
	Attempts  int    // continuation attempts made before giving up
	Reason    string
	Err       error
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse %s: %s", e.Operation, e.Reason)
	if e.Attempts > 0 {
		msg = fmt.Sprintf("%s (after %d continuation attempts)", msg, e.Attempts)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes every ParseError match ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ServiceError wraps a failure of the generative service call itself.
type ServiceError struct {
	Operation string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	return fmt.Sprintf("generate %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying provider error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is makes every ServiceError match ErrGenerationFailed.
func (e *ServiceError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// Timeout reports whether the call failed because its deadline passed.
func (e *ServiceError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// IsTimeout reports whether err is a generative call that ran out of time.
func IsTimeout(err error) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Timeout()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
