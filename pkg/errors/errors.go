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
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrAlreadyRunning ErrorCode = "ALREADY_RUNNING"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"
	ErrConfigSave  ErrorCode = "CONFIG_SAVE"

	// Index check errors, each reported at most once per run
	ErrPatternInvalid ErrorCode = "PATTERN_INVALID"
	ErrCanvasParse    ErrorCode = "CANVAS_PARSE"
	ErrCanvasRead     ErrorCode = "CANVAS_READ"
	ErrWrite          ErrorCode = "WRITE"

	// Vault errors
	ErrVaultAccess ErrorCode = "VAULT_ACCESS"
	ErrLinkResolve ErrorCode = "LINK_RESOLVE"
	ErrLinkCache   ErrorCode = "LINK_CACHE"
	ErrWatch       ErrorCode = "WATCH"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileCreate   ErrorCode = "FILE_CREATE"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"

	// State errors
	ErrStateLoad ErrorCode = "STATE_LOAD"
	ErrStateSave ErrorCode = "STATE_SAVE"
)

// DodexError represents a structured error with code and details
type DodexError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *DodexError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *DodexError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *DodexError) Is(target error) bool {
	var targetErr *DodexError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new DodexError with the given code and message
func New(code ErrorCode, message string) *DodexError {
	return &DodexError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new DodexError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *DodexError {
	return &DodexError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a DodexError
func Wrap(err error, code ErrorCode, message string) *DodexError {
	if err == nil {
		return nil
	}
	return &DodexError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *DodexError {
	if err == nil {
		return nil
	}
	return &DodexError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *DodexError) WithDetail(key string, value interface{}) *DodexError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var dodexErr *DodexError
	if errors.As(err, &dodexErr) {
		return dodexErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a DodexError
func GetErrorCode(err error) ErrorCode {
	var dodexErr *DodexError
	if errors.As(err, &dodexErr) {
		return dodexErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a DodexError
func GetErrorDetails(err error) map[string]interface{} {
	var dodexErr *DodexError
	if errors.As(err, &dodexErr) {
		return dodexErr.Details
	}
	return nil
}

// Describe returns the user facing message for an index check error category.
func Describe(code ErrorCode) string {
	switch code {
	case ErrPatternInvalid:
		return "One of the index or ignore patterns is not a valid regular expression"
	case ErrCanvasParse:
		return "A canvas index could not be parsed, its links were not checked"
	case ErrCanvasRead:
		return "A canvas index could not be read, its links were not checked"
	case ErrWrite:
		return "Missing links could not be written to one or more files"
	default:
		return "Index check failed unexpectedly, see the log for details"
	}
}
