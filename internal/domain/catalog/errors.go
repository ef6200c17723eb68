package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrPermission  = errors.New("permission denied")
	ErrNotFound    = errors.New("item not found")
	ErrUnknownKind = errors.New("unknown content kind")
)

// ValidationError carries the offending fields; it matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
