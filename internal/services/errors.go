// Package services holds the application services that sit between the HTTP
// handlers and the database stores.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a request the caller can fix; handlers respond 400.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden marks an operation on a resource the caller does not own.
	ErrForbidden = errors.New("forbidden")
)

// Invalidf builds an ErrValidation with a client-facing message.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
