package csvgraph

import "fmt"

// IOError provides structured error information for writer failures.
type IOError struct {
	Op    string // Operation that failed (e.g., "WriteEdges", "concat")
	Path  string // Output file path
	Cause error  // Underlying error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *IOError) Unwrap() error { return e.Cause }

func ioErr(op, path string, cause error) *IOError {
	return &IOError{Op: op, Path: path, Cause: cause}
}
