package pathseek

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on a closed Engine.
	ErrClosed = errors.New("engine is closed")

	// ErrNotFound is returned when a path is not indexed.
	ErrNotFound = errors.New("not found")

	// ErrInvalidLimit is returned when a result limit is not positive.
	ErrInvalidLimit = errors.New("limit must be positive")
)

// ErrInvalidPath indicates a path that cannot be indexed.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidPath struct {
	Path   string
	Reason string
	cause  error
}

func (e *ErrInvalidPath) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

func (e *ErrInvalidPath) Unwrap() error { return e.cause }

// ErrIndexCorruption indicates the index structures disagree with the
// path registry. Returned by CheckIntegrity.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrIndexCorruption struct {
	Detail string
	cause  error
}

func (e *ErrIndexCorruption) Error() string {
	return fmt.Sprintf("index corruption: %s", e.Detail)
}

func (e *ErrIndexCorruption) Unwrap() error { return e.cause }
