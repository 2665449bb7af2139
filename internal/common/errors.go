package common

import (
	"errors"
	"fmt"
)

// Service error categories. Handlers map these to HTTP status codes:
// ErrValidation -> 400, ErrNotFound -> 404, ErrNoOutput -> 422,
// ErrUnavailable -> 503.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrNoOutput    = errors.New("no usable output")
	ErrUnavailable = errors.New("service unavailable")
)

// ValidationError wraps ErrValidation with a caller-facing message
func ValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundError wraps ErrNotFound with a caller-facing message
func NotFoundError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// UnavailableError wraps ErrUnavailable with a caller-facing message
func UnavailableError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, fmt.Sprintf(format, args...))
}

// NoOutputError wraps ErrNoOutput with a caller-facing message
func NoOutputError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNoOutput, fmt.Sprintf(format, args...))
}
