// Package errors provides structured error types for kirchhoff.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - A clear split between bad input and unsolvable circuits
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Circuit analysis failures map onto five codes:
//   - INVALID_FORMAT: malformed or out-of-range branch record
//   - DISCONNECTED_GRAPH: no spanning tree covers every node
//   - INTERNAL_INVARIANT: a fundamental cycle that must exist was not found
//   - NOT_FOUND: a node pair does not name any branch
//   - SINGULAR_MATRIX: the assembled system has no unique solution
//
// The first two are input errors (see [IsUserError]); the others point at an
// underdetermined circuit or a modelling-convention violation.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "line %d: expected 6 fields", n)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // Handle malformed netlist
//	}
//
//	// Wrap a package sentinel so both the code and the sentinel match
//	err := errors.Wrap(errors.ErrCodeSingular, linalg.ErrSingular, "pivot %d", k)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeDisconnected  Code = "DISCONNECTED_GRAPH"

	// Lookup errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Analysis errors
	ErrCodeSingular          Code = "SINGULAR_MATRIX"
	ErrCodeInternalInvariant Code = "INTERNAL_INVARIANT"

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

// IsUserError reports whether err was caused by the circuit description
// itself (malformed records, unknown files, disconnected topology) rather
// than by an unsolvable system or a broken internal invariant.
func IsUserError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeDisconnected, ErrCodeFileNotFound:
		return true
	}
	return false
}
