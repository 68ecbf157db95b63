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

	// Configuration errors
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrConfigParse   ErrorCode = "CONFIG_PARSE"
	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"

	// Rule construction errors
	ErrOSClassInvalid ErrorCode = "OS_CLASS_INVALID"
	ErrPatternInvalid ErrorCode = "PATTERN_INVALID"

	// Machine context errors
	ErrPlatformUnknown ErrorCode = "PLATFORM_UNKNOWN"
)

// SiftError represents a structured error with code and details
type SiftError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *SiftError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *SiftError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *SiftError) Is(target error) bool {
	var targetErr *SiftError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new SiftError with the given code and message
func New(code ErrorCode, message string) *SiftError {
	return &SiftError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new SiftError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *SiftError {
	return &SiftError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a SiftError
func Wrap(err error, code ErrorCode, message string) *SiftError {
	if err == nil {
		return nil
	}
	return &SiftError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *SiftError {
	if err == nil {
		return nil
	}
	return &SiftError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *SiftError) WithDetail(key string, value interface{}) *SiftError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error, or any error it wraps, has a
// specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var siftErr *SiftError
		if !errors.As(err, &siftErr) {
			return false
		}
		if siftErr.Code == code {
			return true
		}
		err = siftErr.Wrapped
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a SiftError
func GetErrorCode(err error) ErrorCode {
	var siftErr *SiftError
	if errors.As(err, &siftErr) {
		return siftErr.Code
	}
	return ErrUnknown
}
