// Package errors provides structured error types for the dashgrid engine.
//
// Every error that crosses a public boundary of the layout engine carries a
// machine-readable [Code], so callers (CLI, HTTP API, UI glue) can decide
// whether an outcome is a rejected gesture, a data-integrity warning, or a
// real failure without matching on message strings.
//
// # Error Codes
//
//   - INVALID_*: input that the engine refuses (geometry, names, policies)
//   - ORPHAN_REFERENCE: layout/component mismatch found at load time
//   - STACK_EXHAUSTED: undo/redo with nothing to step to (never returned by
//     the engine itself, which treats it as a no-op; exposed for callers that
//     want to report it)
//   - STORAGE, NETWORK: persistence failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidGeometry, "width must be positive, got %d", w)
//	if errors.Is(err, errors.ErrCodeInvalidGeometry) {
//	    // treat gesture as a no-op
//	}
//
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "save dashboard %s", name)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidGeometry Code = "INVALID_GEOMETRY"
	ErrCodeInvalidPolicy   Code = "INVALID_POLICY"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidSnapshot Code = "INVALID_SNAPSHOT"
	ErrCodeInvalidName     Code = "INVALID_NAME"

	// Layout state errors
	ErrCodeOrphanReference   Code = "ORPHAN_REFERENCE"
	ErrCodeUnknownItem       Code = "UNKNOWN_ITEM"
	ErrCodeDuplicateItem     Code = "DUPLICATE_ITEM"
	ErrCodeGestureInProgress Code = "GESTURE_IN_PROGRESS"
	ErrCodeNoGesture         Code = "NO_GESTURE"
	ErrCodeStackExhausted    Code = "STACK_EXHAUSTED"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeStorage  Code = "STORAGE"
	ErrCodeNetwork  Code = "NETWORK_ERROR"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// Join combines warnings into a single error, preserving each for errors.As.
// It returns nil when errs is empty.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
