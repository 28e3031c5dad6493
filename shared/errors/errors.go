package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
	Err        error // underlying cause, never shown to the caller
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

func (e *ErrorWithStatusCode) Unwrap() error {
	return e.Err
}

// Shown for every failure the caller can't fix by changing input.
const genericFailure = "Something went wrong, please try again later"

var ErrAuthenticationRequired = &ErrorWithStatusCode{Message: "Please sign-in", StatusCode: http.StatusUnauthorized}

func Validation(format string, args ...any) error {
	return &ErrorWithStatusCode{Message: fmt.Sprintf(format, args...), StatusCode: http.StatusBadRequest}
}

// NotFound is returned both when the row is missing and when it belongs to
// someone else, so callers can't learn whether it exists.
func NotFound(entity string) error {
	return &ErrorWithStatusCode{Message: entity + " not found", StatusCode: http.StatusNotFound}
}

func Persistence(err error) error {
	return &ErrorWithStatusCode{Message: genericFailure, StatusCode: http.StatusInternalServerError, Err: err}
}

// StatusCode returns the status carried by err, or 500 if there is none.
func StatusCode(err error) int {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// HasStatus reports whether err carries an explicit status code.
func HasStatus(err error) bool {
	var e *ErrorWithStatusCode
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	return HasStatus(err) && StatusCode(err) == http.StatusNotFound
}

func IsValidation(err error) bool {
	return HasStatus(err) && StatusCode(err) == http.StatusBadRequest
}

// Message returns a text suitable for direct display.
func Message(err error) string {
	var e *ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.Message
	}
	return genericFailure
}
