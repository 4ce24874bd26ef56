// Package errors provides structured error types for the vitalsgrid application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the layout engine, CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly messages for rejected placements
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Placement violations are non-fatal and always carry one of:
//   - OUT_OF_BOUNDS: the candidate rectangle leaves the grid
//   - BELOW_MINIMUM: width or height is below one cell
//   - OVERLAP: the candidate rectangle intersects another tile
//
// The remaining codes cover lookup failures, invalid session transitions,
// data source and feed failures, and unexpected internal errors.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeOutOfBounds, "Width exceeds grid bounds (max %d columns)", cols)
//	if errors.Is(err, errors.ErrCodeOutOfBounds) {
//	    // Report to the user
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDataSource, origErr, "fetch %s", tr)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Placement violations
	ErrCodeOutOfBounds  Code = "OUT_OF_BOUNDS"
	ErrCodeBelowMinimum Code = "BELOW_MINIMUM"
	ErrCodeOverlap      Code = "OVERLAP"

	// Input validation errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidTile       Code = "INVALID_TILE"
	ErrCodeInvalidTimeRange  Code = "INVALID_TIME_RANGE"
	ErrCodeInvalidTransition Code = "INVALID_TRANSITION"
	ErrCodeDuplicateTile     Code = "DUPLICATE_TILE"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeTileNotFound Code = "TILE_NOT_FOUND"

	// Data and feed errors
	ErrCodeDataSource       Code = "DATA_SOURCE"
	ErrCodeFeedDisconnected Code = "FEED_DISCONNECTED"
	ErrCodeNetwork          Code = "NETWORK_ERROR"
	ErrCodeTimeout          Code = "TIMEOUT"

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
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsPlacement reports whether err is one of the placement violation codes.
func IsPlacement(err error) bool {
	switch GetCode(err) {
	case ErrCodeOutOfBounds, ErrCodeBelowMinimum, ErrCodeOverlap:
		return true
	}
	return false
}
