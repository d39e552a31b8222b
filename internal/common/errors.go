// Package common defines sentinel errors and small helpers shared by the
// Mindful+ packages. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Store-level errors.
	ErrorNotFound = errors.New("not found")

	// Session and access errors.
	ErrorUnauthorized = errors.New("unauthorized")
	ErrInvalidToken   = errors.New("invalid token")
	ErrNoSession      = errors.New("no active session")

	// Validation errors.
	ErrorValidation = errors.New("validation error")

	// Optional integrations that were not configured.
	ErrNotConfigured = errors.New("not configured")
)
