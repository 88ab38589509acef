package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation")       // 422
	ErrNotFound        = errors.New("not found")        // 404
	ErrForbidden       = errors.New("forbidden")        // 403
	ErrConflict        = errors.New("conflict")         // 409
	ErrNotPending      = errors.New("not pending")      // 400, status transition from terminal state
	ErrEmailRegistered = errors.New("email registered") // 422 + requires_login on guest checkout
)

// ValidationError carries the field-level error map rendered in 422 bodies.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %d invalid fields", len(e.Fields))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func newValidationError(fields map[string][]string) error {
	return &ValidationError{Fields: fields}
}

func fieldError(field, msg string) error {
	return &ValidationError{Fields: map[string][]string{field: {msg}}}
}
