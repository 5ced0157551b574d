package model

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a well-formed id matches no record.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write collides with existing state.
	ErrConflict = errors.New("conflict")
	// ErrInvalidID is returned for malformed identifiers.
	ErrInvalidID = errors.New("invalid id")
	// ErrForbidden is returned when the caller may not act on a record.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError names the fields that failed a semantic check.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError with a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
