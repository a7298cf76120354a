// Package errors wraps github.com/pkg/errors with the helpers used across
// syncfiler. Errors that should be shown to the user verbatim implement
// FriendlyError.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// FriendlyError is an error whose message is suitable for printing directly to
// the user, without a stack of wrapped contexts.
type FriendlyError interface {
	error
	FriendlyMessage() string
}

type friendlyError struct {
	msg string
}

func (err friendlyError) Error() string {
	return err.msg
}

func (err friendlyError) FriendlyMessage() string {
	return err.msg
}

// NewFriendlyError creates a FriendlyError from the format string.
func NewFriendlyError(format string, args ...interface{}) error {
	return friendlyError{fmt.Sprintf(format, args...)}
}

// New returns an error with the given message.
func New(format string, args ...interface{}) error {
	if len(args) == 0 {
		return errors.New(format)
	}
	return errors.Errorf(format, args...)
}

// WithContext prefixes err with ctx. It returns nil if err is nil.
func WithContext(err error, ctx string) error {
	return errors.WithMessage(err, ctx)
}

// RootCause returns the innermost error that isn't wrapped by WithContext.
func RootCause(err error) error {
	return errors.Cause(err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
