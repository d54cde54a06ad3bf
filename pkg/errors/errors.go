// Package errors provides kind-tagged domain errors and their RFC 7807 Problem Details rendering.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	Is = errors.Is
	As = errors.As
)

// FieldError points a validation failure at one request field.
type FieldError struct {
	Kind    string `json:"kind"`
	Field   string `json:"field"`
	Message string `json:"message,omitempty"`
}

func (f *FieldError) Error() string {
	return fmt.Sprintf("%s (%s): %s", f.Field, f.Kind, f.Message)
}

func kind(code int) *Error {
	return &Error{Kind: http.StatusText(code), status: code}
}

// Base kinds. Derive concrete errors with Explain, WithField or Wrap; never mutate these.
var (
	Invalid      = kind(http.StatusBadRequest)
	Unauthorized = kind(http.StatusUnauthorized)
	Forbidden    = kind(http.StatusForbidden)
	NotFound     = kind(http.StatusNotFound)
	Conflict     = kind(http.StatusConflict)
	TooMany      = kind(http.StatusTooManyRequests)
)

// Error carries an HTTP status, a client-facing message and optional field errors.
type Error struct {
	Kind    string       `json:"kind"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`

	status int
	cause  error
}

var _ error = (*Error)(nil)

// New returns an internal error with the given message.
func New(message string) *Error {
	return &Error{Kind: "Unknown", Message: message, status: http.StatusInternalServerError}
}

// Wrap turns an arbitrary error into an internal one.
func Wrap(err error) *Error {
	return &Error{Kind: "Unknown", cause: err, status: http.StatusInternalServerError}
}

func (e *Error) Error() string {
	str := fmt.Sprintf("[%s] ", e.Kind)
	if e.Message != "" {
		str += e.Message
	}
	if e.cause != nil {
		str += fmt.Sprintf(" (%s)", e.cause)
	}
	return str
}

func (e *Error) StatusCode() int {
	if e.status == 0 {
		return http.StatusInternalServerError
	}
	return e.status
}

// Reason returns a copy tagged with a different kind, which errors.Is then matches on.
func (e *Error) Reason(kind string) *Error {
	err := *e
	err.Kind = kind
	return &err
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func (e *Error) Wrap(cause error) *Error {
	err := *e
	err.cause = cause
	return &err
}

func (e *Error) Explain(message string, args ...any) *Error {
	err := *e
	err.Message = fmt.Sprintf(message, args...)
	return &err
}

// WithField returns a copy with one more field error.
func (e *Error) WithField(kind, field, message string) *Error {
	err := *e
	err.Fields = append(append([]FieldError(nil), e.Fields...), FieldError{Kind: kind, Field: field, Message: message})
	return &err
}

// Is matches on Kind so derived copies compare equal to their base.
func (e *Error) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	if other, ok := target.(*Error); ok {
		return other.Kind == e.Kind
	}
	return false
}
