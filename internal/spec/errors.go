package spec

import (
	"errors"
	"fmt"
)

// ErrInvalidSpec is matched by every ParseError
var ErrInvalidSpec = errors.New("invalid specification")

// ParseError describes why a number or operator spec was rejected
type ParseError struct {
	Input  string // Spec as given
	Reason string // Human-readable reason, e.g. `Invalid number: "x"`
}

func (e *ParseError) Error() string {
	return e.Reason
}

// Unwrap lets callers match ErrInvalidSpec
func (e *ParseError) Unwrap() error {
	return ErrInvalidSpec
}

func newParseError(input, format string, args ...any) *ParseError {
	return &ParseError{Input: input, Reason: fmt.Sprintf(format, args...)}
}
