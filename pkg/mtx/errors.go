package mtx

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrNotFound   = errors.New("matrix file not found")
	ErrBadHeader  = errors.New("malformed matrix header")
	ErrEntryCount = errors.New("entry count does not match header")
	ErrIndexRange = errors.New("coordinate index out of declared range")
	ErrBadEntry   = errors.New("malformed coordinate entry")
)

// ParseError provides structured error information for reader failures.
type ParseError struct {
	Op    string // Operation that failed (e.g., "ReadHeader", "Read")
	Path  string // Input file path
	Line  int    // 1-based line number within the file, 0 if unknown
	Cause error  // Underlying error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s %s:%d: %v", e.Op, e.Path, e.Line, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *ParseError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

func parseErr(op, path string, line int, cause error) *ParseError {
	return &ParseError{Op: op, Path: path, Line: line, Cause: cause}
}
