// internal/errors/errors.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Error is the unit of the HTTP error taxonomy: a status code, a
// user-visible message and optional field-level details. Services return
// *Error; the response layer renders it as the standard envelope.
type Error struct {
	Status  int
	Message string
	Details any
}

func (e *Error) Error() string { return e.Message }

func New(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

// Invalid is a 400 validation failure, optionally with field details.
func Invalid(msg string, details ...any) *Error {
	e := &Error{Status: http.StatusBadRequest, Message: msg}
	if len(details) > 0 {
		e.Details = details[0]
	}
	return e
}

// Precondition is a 400 for state problems (inactive profile, unset
// location) rather than malformed input.
func Precondition(msg string) *Error {
	return New(http.StatusBadRequest, msg)
}

// Duplicate is a 400 for already-exists conflicts (second swipe on the same
// pair, duplicate plan name).
func Duplicate(msg string) *Error {
	return New(http.StatusBadRequest, msg)
}

func NotFound(msg string) *Error {
	return New(http.StatusNotFound, msg)
}

func Forbidden(msg string) *Error {
	return New(http.StatusForbidden, msg)
}

func Unauthorized(msg string) *Error {
	return New(http.StatusUnauthorized, msg)
}

// Upstream wraps a payment-processor or storage failure. The upstream
// message is passed through largely verbatim, matching the original surface.
func Upstream(err error) *Error {
	return New(http.StatusBadRequest, err.Error())
}

func Internal(msg string) *Error {
	return New(http.StatusInternalServerError, msg)
}

// Map converts repo/infra errors into taxonomy errors. Keeps the service
// layer clean by centralizing the translation.
func Map(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("record not found")

	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return Internal("request timed out")

	default:
		// fallback → bubble up error message for debugging
		return Internal(err.Error())
	}
}
