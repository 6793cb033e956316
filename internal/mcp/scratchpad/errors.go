package scratchpad

import (
	"fmt"

	errors "github.com/Laisky/errors/v2"
)

// ErrorCode identifies a machine-stable scratchpad error code.
type ErrorCode string

const (
	ErrCodeValidation        ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeSizeLimit         ErrorCode = "SIZE_LIMIT_EXCEEDED"
	ErrCodeIndexUnavailable  ErrorCode = "INDEX_UNAVAILABLE"
	ErrCodeInconsistentIndex ErrorCode = "INCONSISTENT_INDEX"
	ErrCodeInternal          ErrorCode = "INTERNAL"
)

// Error captures a typed scratchpad error with retryability metadata.
type Error struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Details   map[string]any
}

// Error returns the error message.
func (e *Error) Error() string {
	if e == nil {
		return "scratchpad error: <nil>"
	}
	if e.Message == "" {
		return fmt.Sprintf("scratchpad error: %s", e.Code)
	}
	return e.Message
}

// NewError constructs a typed scratchpad error.
func NewError(code ErrorCode, message string, retryable bool) *Error {
	return &Error{Code: code, Message: message, Retryable: retryable}
}

// newValidationError builds a non-retryable VALIDATION_ERROR.
func newValidationError(format string, args ...any) *Error {
	return NewError(ErrCodeValidation, fmt.Sprintf(format, args...), false)
}

// newNotFoundError builds a non-retryable NOT_FOUND error for the given entity.
func newNotFoundError(entity, id string) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s %q not found", entity, id),
		Details: map[string]any{"entity": entity, "id": id},
	}
}

// newSizeLimitError reports both the attempted and the permitted content size.
func newSizeLimitError(attempted, limit int64) *Error {
	return &Error{
		Code:    ErrCodeSizeLimit,
		Message: fmt.Sprintf("content size %d bytes exceeds limit of %d bytes", attempted, limit),
		Details: map[string]any{
			"attempted_bytes": attempted,
			"limit_bytes":     limit,
		},
	}
}

// AsError extracts a typed scratchpad error from the error chain.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}

// IsCode reports whether the error chain contains the given code.
func IsCode(err error, code ErrorCode) bool {
	if typed, ok := AsError(err); ok {
		return typed.Code == code
	}
	return false
}
