// Package errors defines the coded error type shared by every sealstore
// package. Codes live in types.go; the stdlib helpers are re-exported in
// wrap.go so callers need a single import.
package errors

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// UnknownCode is reported for errors that carry no *Error in their chain.
const UnknownCode = 500

// Error is a coded error with optional diagnostic metadata and cause.
// Values are treated as immutable; the With* methods return copies.
type Error struct {
	Code     int               `json:"code,omitempty"`
	Message  string            `json:"message,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
	cause    error
}

// Error renders as
//
//	code=1003(integrity), message=..., metadata={k=v, ...}, cause=...
//
// with metadata keys sorted.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("code=" + strconv.Itoa(e.Code))
	if kind := KindOf(e.Code); kind != "" {
		b.WriteString("(" + kind + ")")
	}
	b.WriteString(", message=" + e.Message)

	if len(e.Metadata) > 0 {
		pairs := make([]string, 0, len(e.Metadata))
		for _, k := range slices.Sorted(maps.Keys(e.Metadata)) {
			pairs = append(pairs, k+"="+e.Metadata[k])
		}
		b.WriteString(", metadata={" + strings.Join(pairs, ", ") + "}")
	}
	if e.cause != nil {
		b.WriteString(", cause=" + e.cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches another *Error with the same code and message, ignoring
// metadata and cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// WithMetadata returns a copy with m merged over the existing metadata.
func (e *Error) WithMetadata(m map[string]string) *Error {
	if len(m) == 0 {
		return e
	}
	c := e.copy()
	if c.Metadata == nil {
		c.Metadata = make(map[string]string, len(m))
	}
	maps.Copy(c.Metadata, m)
	return c
}

// WithCause returns a copy whose Unwrap yields cause.
func (e *Error) WithCause(cause error) *Error {
	if cause == nil {
		return e
	}
	c := e.copy()
	c.cause = cause
	return c
}

func (e *Error) copy() *Error {
	c := *e
	c.Metadata = maps.Clone(e.Metadata)
	return &c
}

func (e *Error) GetCode() int       { return e.Code }
func (e *Error) GetMessage() string { return e.Message }
func (e *Error) GetCause() error    { return e.cause }

// GetMetadata returns a copy; mutating it does not affect e.
func (e *Error) GetMetadata() map[string]string {
	return maps.Clone(e.Metadata)
}

// New builds an *Error. format is used verbatim when no args are given, so
// messages containing '%' are safe.
func New(code int, format string, args ...any) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Code: code, Message: msg}
}

func NewWithMetadata(code int, metadata map[string]string, format string, args ...any) *Error {
	return New(code, format, args...).WithMetadata(metadata)
}

// FromError returns the first *Error in err's chain, or wraps err with
// UnknownCode. It returns nil for a nil err.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return New(UnknownCode, "%v", err).WithCause(err)
}

// Wrap attaches code and message to err. A nil err yields nil.
func Wrap(err error, code int, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return New(code, format, args...).WithCause(err)
}

// WrapWithMetadata is Wrap plus metadata.
func WrapWithMetadata(err error, code int, metadata map[string]string, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return NewWithMetadata(code, metadata, format, args...).WithCause(err)
}
