package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by the store, repositories and services.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyVoted     = errors.New("already voted")
	ErrGenerationFailed = errors.New("generation failed")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrUpstreamTimeout  = errors.New("upstream timeout")
	ErrValidation       = errors.New("validation error")
)

// FieldError describes a problem with one request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned before any store access when required
// identifiers are missing or malformed.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add records a field problem and returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
	return e
}

// OrNil returns nil when no field problem was recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

func NewValidationError(field, message string) *ValidationError {
	return (&ValidationError{}).Add(field, message)
}
