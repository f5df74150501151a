package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the different failure kinds of a harvest
type ErrorType string

const (
	// ErrorTypeProcess covers spawn errors and non-zero exits of the scraper
	ErrorTypeProcess ErrorType = "process"
	// ErrorTypeParse covers malformed scraper output
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypeProbe covers network and extraction failures of the profile probe
	ErrorTypeProbe ErrorType = "probe"
	// ErrorTypeIO covers scratch directory and output file failures
	ErrorTypeIO      ErrorType = "io"
	ErrorTypeUnknown ErrorType = "unknown"
)

// Error is a typed failure. Err, when set, is the underlying cause.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error wrapping cause
func New(t ErrorType, message string, cause error) *Error {
	return &Error{Type: t, Message: message, Err: cause}
}

// Process creates a scraper process error with its exit code (-1 when the
// process could not be started)
func Process(message string, code int, cause error) *Error {
	return &Error{Type: ErrorTypeProcess, Message: message, Code: code, Err: cause}
}

// TypeOf returns the ErrorType of the first typed error in err's chain
func TypeOf(err error) ErrorType {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}

// IsRetryable checks if an error type should be retried. Malformed output is
// retried like a process failure since the scraper output is not deterministic.
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeProcess, ErrorTypeParse, ErrorTypeIO:
		return true
	case ErrorTypeProbe:
		return false
	default:
		return false
	}
}
