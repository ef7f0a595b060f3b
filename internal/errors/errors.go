// Package errors provides the structured error taxonomy for the analysis
// cache subsystem.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a conflict with existing data (e.g., unique constraint violation).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeValidation indicates malformed or out-of-range parameters,
	// surfaced synchronously before any job is created.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeAnalysisFailure indicates the opaque analysis function raised or
	// returned a failure signal. Recorded on the JobResult, never cached.
	ErrCodeAnalysisFailure ErrorCode = "analysis_failure"
	// ErrCodePersistence indicates a Result Store write failed mid-sequence.
	ErrCodePersistence ErrorCode = "persistence"
	// ErrCodeIncompleteCacheHit indicates recomposition found fewer sections
	// than the per-application minimum; treated as a miss, logged distinctly.
	ErrCodeIncompleteCacheHit ErrorCode = "incomplete_cache_hit"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured application error with a code, message, and
// optional cause. It supports error wrapping and unwrapping for use with
// errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// Validationf creates a new Validation error with formatted message.
func Validationf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// AnalysisFailure creates a new AnalysisFailure error.
func AnalysisFailure(message string) *AppError {
	return &AppError{Code: ErrCodeAnalysisFailure, Message: message}
}

// Persistence creates a new Persistence error.
func Persistence(message string) *AppError {
	return &AppError{Code: ErrCodePersistence, Message: message}
}

// IncompleteCacheHit creates a new IncompleteCacheHit error.
func IncompleteCacheHit(message string) *AppError {
	return &AppError{Code: ErrCodeIncompleteCacheHit, Message: message}
}

// IncompleteCacheHitf creates a new IncompleteCacheHit error with formatted message.
func IncompleteCacheHitf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeIncompleteCacheHit, Message: fmt.Sprintf(format, args...)}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Internalf creates a new Internal error with formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool {
	return isCode(err, ErrCodeConflict)
}

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool {
	return isCode(err, ErrCodeValidation)
}

// IsAnalysisFailure checks if an error is an AnalysisFailure error.
func IsAnalysisFailure(err error) bool {
	return isCode(err, ErrCodeAnalysisFailure)
}

// IsPersistence checks if an error is a Persistence error.
func IsPersistence(err error) bool {
	return isCode(err, ErrCodePersistence)
}

// IsIncompleteCacheHit checks if an error is an IncompleteCacheHit error.
func IsIncompleteCacheHit(err error) bool {
	return isCode(err, ErrCodeIncompleteCacheHit)
}

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool {
	return isCode(err, ErrCodeInternal)
}

// IsTimeout checks if an error is a Timeout error.
func IsTimeout(err error) bool {
	return isCode(err, ErrCodeTimeout)
}

// Code returns the ErrorCode of an error, or ErrCodeInternal when the error
// carries no AppError in its chain.
func Code(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}
