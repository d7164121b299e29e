package utils

import "fmt"

// InvalidParameterError represents a rate or population parameter outside its
// valid domain. It is the only error kind the projection engine produces.
type InvalidParameterError struct {
	Message string
}

// Error returns the error message string.
func (e *InvalidParameterError) Error() string {
	return e.Message
}

// NewInvalidParameterError creates a new InvalidParameterError with a specific message.
//
// Parameters:
//   - message: The error message.
//
// Returns:
//   - An error interface wrapping the InvalidParameterError.
func NewInvalidParameterError(message string) error {
	return &InvalidParameterError{
		Message: message,
	}
}

// NewInvalidParameterErrorf creates a new InvalidParameterError with a formatted message.
//
// Parameters:
//   - format: The format string.
//   - args: Arguments for the format string.
//
// Returns:
//   - An error interface wrapping the InvalidParameterError.
func NewInvalidParameterErrorf(format string, args ...interface{}) error {
	return &InvalidParameterError{
		Message: fmt.Sprintf(format, args...),
	}
}

// IsInvalidParameter reports whether err is an InvalidParameterError.
func IsInvalidParameter(err error) bool {
	_, ok := err.(*InvalidParameterError)
	return ok
}
