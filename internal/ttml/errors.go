package ttml

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTime is returned for time expressions that fail the
	// grammar or range checks.
	ErrInvalidTime = errors.New("invalid time expression")

	// ErrInternal marks a broken parser invariant, never bad input.
	ErrInternal = errors.New("internal parser error")
)

// ParseError is the single terminal error of a failed parse. It carries the
// approximate position in the source where the fatal cause was detected.
type ParseError struct {
	Line   int
	Column int
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ttml: line %d, column %d (byte %d): %v", e.Line, e.Column, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
