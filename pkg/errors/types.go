package errors

import (
	"fmt"
)

// ErrFileChanged is returned when the replica's contents don't match the
// source after a copy. This usually means the source was written to while it
// was being copied.
var ErrFileChanged = New("file contents changed during sync")

// ErrNotAccessible is returned when a file can't be opened exclusively for
// reading, e.g. because another process holds a lock on it.
var ErrNotAccessible = New("file is not accessible")

// MissingFieldError represents a missing required field.
type MissingFieldError struct {
	Field string
}

func (err MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", err.Field)
}

// FileNotFound represents when we were unable to access a file
// because the path didn't exist.
type FileNotFound struct {
	Path string
}

func (err FileNotFound) Error() string {
	return fmt.Sprintf("%q does not exist", err.Path)
}
