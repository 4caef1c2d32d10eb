package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrPermission   ErrorCode = "PERMISSION"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Execution errors
	ErrSkipped    ErrorCode = "SKIPPED"
	ErrEscalation ErrorCode = "ESCALATION"

	// Provenance errors
	ErrProvenance ErrorCode = "PROVENANCE"

	// FileSystem errors
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrFileWrite     ErrorCode = "FILE_WRITE"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
)

// DaglinkError represents a structured error with code and details
type DaglinkError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DaglinkError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DaglinkError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DaglinkError) Is(target error) bool {
	var targetErr *DaglinkError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DaglinkError with the given code and message
func New(code ErrorCode, message string) *DaglinkError {
	return &DaglinkError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DaglinkError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DaglinkError {
	return &DaglinkError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DaglinkError
func Wrap(err error, code ErrorCode, message string) *DaglinkError {
	if err == nil {
		return nil
	}
	return &DaglinkError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DaglinkError {
	if err == nil {
		return nil
	}
	return &DaglinkError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DaglinkError) WithDetail(key string, value interface{}) *DaglinkError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var daglinkErr *DaglinkError
	if errors.As(err, &daglinkErr) {
		return daglinkErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DaglinkError
func GetErrorCode(err error) ErrorCode {
	var daglinkErr *DaglinkError
	if errors.As(err, &daglinkErr) {
		return daglinkErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a DaglinkError
func GetErrorDetails(err error) map[string]interface{} {
	var daglinkErr *DaglinkError
	if errors.As(err, &daglinkErr) {
		return daglinkErr.Details
	}
	return nil
}

// IsSkipped reports whether err marks an operation the operator did not
// permit, or a target that could not be located.
func IsSkipped(err error) bool {
	return IsErrorCode(err, ErrSkipped) || IsErrorCode(err, ErrNotFound)
}

// IsFatal reports whether err should abort the whole run.
func IsFatal(err error) bool {
	return IsErrorCode(err, ErrConfigValid)
}
