package optimization

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotObject is matched by InputError.
var ErrNotObject = errors.New("model response is not an object")

// InputError reports a raw value that cannot be normalized at all.
type InputError struct {
	// Kind describes what was received instead of an object, e.g. "array" or "null".
	Kind string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("normalize: expected an object, got %s", e.Kind)
}

func (e *InputError) Unwrap() error {
	return ErrNotObject
}

// FieldError is a single schema violation.
type FieldError struct {
	Field   string
	Message string
}

// SchemaError reports a result that does not satisfy the result schema.
type SchemaError struct {
	Errors []FieldError
	Cause  error
}

func (e *SchemaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("schema validation failed: %v", e.Cause)
	}

	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return fmt.Sprintf("schema validation failed: %s", strings.Join(parts, "; "))
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}
