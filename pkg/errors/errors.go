// Package errors provides structured error types for the diagram preprocessors.
//
// Every failure the pipeline can surface carries a machine-readable [Code] so
// callers (the CLI, the preview server, tests) can classify it without string
// matching, while the message keeps the original diagnostic for humans.
//
// # Error Codes
//
//   - UNTERMINATED_BLOCK: a diagram fence never closes
//   - PARSE_ERROR: the renderer rejected the diagram source
//   - PROCESS_SPAWN: the renderer executable could not be started
//   - RENDER_FAILED: the renderer exited non-zero or reported diagnostics
//   - STREAM_IO: a pipe to or from the renderer failed
//   - NAME_COLLISION: the name table handed out a duplicate (never expected)
//   - STRUCTURAL_MISMATCH: parallel diagram trees disagree in shape
//   - TIMEOUT: an external render exceeded its bound
//
// # Usage
//
//	err := errors.New(errors.ErrCodeTimeout, "dot did not finish within %s", d)
//	if errors.Is(err, errors.ErrCodeTimeout) {
//	    // ...
//	}
//
//	err := errors.Wrap(errors.ErrCodeStreamIO, origErr, "write stdin")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the preprocessing pipeline.
const (
	// Extraction
	ErrCodeUnterminatedBlock Code = "UNTERMINATED_BLOCK"

	// Rendering
	ErrCodeParse        Code = "PARSE_ERROR"
	ErrCodeProcessSpawn Code = "PROCESS_SPAWN"
	ErrCodeRender       Code = "RENDER_FAILED"
	ErrCodeStreamIO     Code = "STREAM_IO"
	ErrCodeTimeout      Code = "TIMEOUT"

	// Naming and flattening
	ErrCodeNameCollision      Code = "NAME_COLLISION"
	ErrCodeStructuralMismatch Code = "STRUCTURAL_MISMATCH"

	// Input and configuration
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

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

// Coder is implemented by error types that carry a code without being an *Error,
// such as renderer parse diagnostics.
type Coder interface {
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or a [Coder] with a matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the first error code found in the chain.
// Returns empty string if no error in the chain carries one.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case Coder:
			return e.Code()
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message (and cause) without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}
