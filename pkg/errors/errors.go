// Package errors provides structured error types for cardspace.
//
// Errors carry a machine-readable [Code] so that the CLI, the HTTP server and
// the engine can tell the four failure classes of the arrangement engine
// apart without string matching:
//
//   - MISSING_ENTITY: a referenced id is not in the entity store
//   - MALFORMED_INPUT: a colour string or import document could not be parsed
//   - RESOLUTION_MISS: a frame, category or geography lookup found nothing
//   - INVARIANT: a write was attempted in a state that does not allow it
//
// Only MALFORMED_INPUT is ever surfaced to a user as a failed operation. The
// other classes are logged by the engine and the operation becomes a no-op.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedInput, "bad hex colour %q", s)
//	if errors.Is(err, errors.ErrCodeMalformedInput) {
//	    // show errors.UserMessage(err)
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeBackend, origErr, "save %s", key)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Engine taxonomy
	ErrCodeMissingEntity  Code = "MISSING_ENTITY"
	ErrCodeMalformedInput Code = "MALFORMED_INPUT"
	ErrCodeResolutionMiss Code = "RESOLUTION_MISS"
	ErrCodeInvariant      Code = "INVARIANT"

	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidCatalog Code = "INVALID_CATALOG"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeBackend  Code = "BACKEND_ERROR"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Fatal reports whether err should abort the operation that produced it.
// Missing entities, resolution misses and invariant violations are expected
// gaps in curated data; everything else is fatal to the operation.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	switch GetCode(err) {
	case ErrCodeMissingEntity, ErrCodeResolutionMiss, ErrCodeInvariant:
		return false
	}
	return true
}
