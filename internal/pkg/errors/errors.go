// Package errors provides coded error types for buildcheck.
package errors

import (
	"errors"
	"fmt"
)

// Process exit codes. Rule failures are report verdicts, not errors; they
// map to ExitRuleFailure in cmd without ever becoming an AppError.
const (
	ExitOK          = 0
	ExitRuleFailure = 1
	ExitError       = 2
)

// Sentinel errors for common failure scenarios.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// AppError is a structured application error with an error code and the
// process exit code it maps to.
type AppError struct {
	// Code is a machine-readable error code (e.g., "RECIPE_LOAD_FAILED").
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// ExitCode is the process exit code this error maps to.
	ExitCode int `json:"-"`

	// Params carries structured context (file path, rule ID, parameter name).
	Params map[string]interface{} `json:"params,omitempty"`

	// Err is the wrapped underlying error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code, message string, exitCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		ExitCode: exitCode,
	}
}

// Wrap wraps an existing error into an AppError.
func Wrap(err error, code, message string, exitCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		ExitCode: exitCode,
		Err:      err,
	}
}

// WithParams attaches structured parameters to the error.
func (e *AppError) WithParams(params map[string]interface{}) *AppError {
	if e == nil || len(params) == 0 {
		return e
	}
	e.Params = params
	return e
}

// IsAppError checks if an error is an AppError and returns it.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// ExitCodeFor maps an error to a process exit code. Non-AppError values
// map to ExitError.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	if appErr, ok := IsAppError(err); ok {
		return appErr.ExitCode
	}
	return ExitError
}
