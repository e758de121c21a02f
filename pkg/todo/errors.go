package todo

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error codes surfaced by the service and repositories
const (
	CodeNotFound    = "NOT_FOUND"
	CodeValidation  = "VALIDATION"
	CodeConflict    = "CONFLICT"
	CodeUnavailable = "UNAVAILABLE"
	CodeInternal    = "INTERNAL"
)

// Error is a structured domain error (fail-fast friendly)
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on error code so callers can compare against sentinels
func (e *Error) Is(target error) bool {
	var te *Error
	if !errors.As(target, &te) {
		return false
	}
	return e.Code == te.Code
}

// Sentinels for errors.Is comparisons
var (
	ErrNotFound    = &Error{Code: CodeNotFound, Message: "todo not found"}
	ErrEmptyTitle  = &Error{Code: CodeValidation, Message: "title cannot be empty"}
	ErrUnavailable = &Error{Code: CodeUnavailable, Message: "repository unavailable"}
)

// NotFoundError builds a NOT_FOUND error for a specific id
func NotFoundError(id uuid.UUID) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("todo %s not found", id)}
}

// ValidationError builds a VALIDATION error with a human-readable message
func ValidationError(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// UnavailableError wraps a transport or storage failure
func UnavailableError(cause error) *Error {
	return &Error{Code: CodeUnavailable, Message: "repository unavailable", Cause: cause}
}

// InternalError wraps an unexpected failure
func InternalError(cause error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", Cause: cause}
}

// CodeOf extracts the domain error code, defaulting to INTERNAL
func CodeOf(err error) string {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return CodeInternal
}
