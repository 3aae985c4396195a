package errors

import (
	goerrors "errors"
)

// The helpers below let callers use this package in place of the standard
// errors package, so a file needs a single errors import.

func Unwrap(err error) error { return goerrors.Unwrap(err) }

func Is(err, target error) bool { return goerrors.Is(err, target) }

func As(err error, target any) bool { return goerrors.As(err, target) }

func Join(errs ...error) error { return goerrors.Join(errs...) }
