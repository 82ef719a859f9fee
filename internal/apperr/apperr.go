// Package apperr defines the error taxonomy shared by the shiftboard core.
//
// Packages wrap these sentinels with context ("shift: get 12: not found") and
// callers classify with errors.Is. Out-of-scope lookups are reported as
// ErrNotFound, never as ErrForbidden.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// CapExceededError reports a loss that would push the allocated total past
// the production's plan/achievement gap.
type CapExceededError struct {
	Cap       int
	Existing  int
	Attempted int
}

func (e *CapExceededError) Error() string {
	return fmt.Sprintf("total loss amount cannot exceed %d (current total: %d, attempted to add: %d)",
		e.Cap, e.Existing, e.Attempted)
}

// Unwrap makes CapExceededError match ErrValidation.
func (e *CapExceededError) Unwrap() error { return ErrValidation }

// NotFound builds "<what> not found" wrapping ErrNotFound.
func NotFound(what string) error {
	return fmt.Errorf("%s: %w", what, ErrNotFound)
}

// Conflict wraps ErrConflict with a formatted message.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConflict)
}

// Invalid wraps ErrValidation with a formatted message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

// Forbidden wraps ErrForbidden with a formatted message.
func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrForbidden)
}
