package extraction

import (
	"errors"
	"fmt"
)

// ErrNoObject is matched by every extraction failure.
var ErrNoObject = errors.New("no JSON object found in model response")

// ExtractionError is returned when no strategy recovered an object. Head and Tail are short
// excerpts of the input kept for diagnostics.
type ExtractionError struct {
	Message string
	Head    string
	Tail    string
	Length  int
}

func (e *ExtractionError) Error() string {
	if e.Head == "" && e.Tail == "" {
		return fmt.Sprintf("extraction failed: %s (input length %d)", e.Message, e.Length)
	}
	return fmt.Sprintf("extraction failed: %s (input length %d, head %q, tail %q)", e.Message, e.Length, e.Head, e.Tail)
}

func (e *ExtractionError) Unwrap() error {
	return ErrNoObject
}
