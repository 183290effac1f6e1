// Package errors is the single errors import for the storefront. It pairs
// the stdlib tree helpers with pkg/errors stack traces, so %+v on a logged
// error shows where it was wrapped.
package errors

import (
	"context"
	stderrors "errors"

	pkgerrors "github.com/pkg/errors"
)

func New(text string) error { return stderrors.New(text) }

func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

func Unwrap(err error) error { return stderrors.Unwrap(err) }

func Join(errs ...error) error { return stderrors.Join(errs...) }

// AsType finds the first error in err's tree of type T.
func AsType[T error](err error) (T, bool) {
	var target T
	ok := stderrors.As(err, &target)

	return target, ok
}

// IsTimeout reports whether err comes from a context whose deadline passed.
// Callers map it to a retryable 503 rather than an internal error.
func IsTimeout(err error) bool {
	return stderrors.Is(err, context.DeadlineExceeded)
}

// Wrap returns nil when err is nil.
func Wrap(err error, message string) error {
	return pkgerrors.Wrap(err, message)
}

func Wrapf(err error, format string, args ...any) error {
	return pkgerrors.Wrapf(err, format, args...)
}

func WithStack(err error) error {
	return pkgerrors.WithStack(err)
}

// WithMessage adds context without a second stack trace.
func WithMessage(err error, message string) error {
	return pkgerrors.WithMessage(err, message)
}

func Errorf(format string, args ...any) error {
	return pkgerrors.Errorf(format, args...)
}

//nolint:wrapcheck // passthrough
func Cause(err error) error {
	return pkgerrors.Cause(err)
}
