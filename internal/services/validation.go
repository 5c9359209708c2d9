package services

import (
	"sort"
	"strings"
)

// ValidationError carries field-keyed messages for malformed or
// policy-violating input. Always recoverable; the handler layer renders it as
// a 400 with the field map attached.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// fieldErrors accumulates field messages and converts to a *ValidationError
// only when at least one field failed.
type fieldErrors map[string]string

func (f fieldErrors) add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

func (f fieldErrors) asError() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
