package errors

import (
	"errors"
)

// Common error types for the auth relay
var (
	// Request errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidID      = errors.New("invalid id")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal server error")
)

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}
