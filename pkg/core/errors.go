package core

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSource is matched by ConfigurationError.
	ErrNoSource = errors.New("backing index required")
	// ErrNotFound is matched by NotFoundError.
	ErrNotFound = errors.New("agent not found")
	// ErrInvalidCursor is matched by InvalidCursorError.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrNotSupported is returned by extension points that have no implementation yet.
	ErrNotSupported = errors.New("not supported yet")
)

// ConfigurationError reports that an operation needs a collaborator that was
// not configured.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return "configuration error: " + ErrNoSource.Error()
	}
	return "configuration error: " + e.Reason
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrNoSource
}

// NotFoundError reports a lookup miss for ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("agent %q not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InvalidCursorError reports a pagination token that does not decode to an offset.
type InvalidCursorError struct {
	Cursor string
	Err    error
}

func (e *InvalidCursorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid cursor %q: %v", e.Cursor, e.Err)
	}
	return fmt.Sprintf("invalid cursor %q", e.Cursor)
}

func (e *InvalidCursorError) Unwrap() error {
	return e.Err
}

func (e *InvalidCursorError) Is(target error) bool {
	return target == ErrInvalidCursor
}

// SearchError wraps a failure of the indexed source during a reputation search.
type SearchError struct {
	Err error
}

func (e *SearchError) Error() string {
	return "reputation search failed: " + e.Err.Error()
}

func (e *SearchError) Unwrap() error {
	return e.Err
}
