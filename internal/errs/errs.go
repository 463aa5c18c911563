// Package errs provides the typed error taxonomy shared by the repositories,
// the storage adapters and the HTTP layer.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown       Code = "UNKNOWN"
	CodeAuthRequired  Code = "AUTH_REQUIRED"
	CodeStorage       Code = "STORAGE"
	CodeRecord        Code = "RECORD"
	CodeNotFound      Code = "NOT_FOUND"
	CodeValidation    Code = "VALIDATION"
	CodeUsernameTaken Code = "USERNAME_TAKEN"
	CodeConflict      Code = "CONFLICT"
)

// HTTPStatus maps a code to the status the API answers with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeAuthRequired:
		return http.StatusUnauthorized
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUsernameTaken, CodeConflict:
		return http.StatusConflict
	case CodeStorage:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a coded error. Op names the operation that failed, Message is
// safe to show to end users, Err is the underlying cause.
type Error struct {
	Code    Code
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same code, so that
// errors.Is(err, errs.ErrNotFound) works across wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Op == "" && t.Err == nil
}

// Sentinels for errors.Is comparisons.
var (
	ErrAuthRequired  = &Error{Code: CodeAuthRequired}
	ErrStorage       = &Error{Code: CodeStorage}
	ErrRecord        = &Error{Code: CodeRecord}
	ErrNotFound      = &Error{Code: CodeNotFound}
	ErrValidation    = &Error{Code: CodeValidation}
	ErrUsernameTaken = &Error{Code: CodeUsernameTaken}
	ErrConflict      = &Error{Code: CodeConflict}
)

func AuthRequired(op string) *Error {
	return &Error{Code: CodeAuthRequired, Op: op, Message: "authentication required"}
}

func Storage(op string, err error) *Error {
	return &Error{Code: CodeStorage, Op: op, Message: "storage operation failed", Err: err}
}

func Record(op string, err error) *Error {
	return &Error{Code: CodeRecord, Op: op, Message: "record operation failed", Err: err}
}

func NotFound(op, what string) *Error {
	return &Error{Code: CodeNotFound, Op: op, Message: what + " not found"}
}

func Validation(op, format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

func UsernameTaken(op, username string) *Error {
	return &Error{Code: CodeUsernameTaken, Op: op, Message: fmt.Sprintf("username %q is already taken", username)}
}

func Conflict(op, what string) *Error {
	return &Error{Code: CodeConflict, Op: op, Message: what + " was modified concurrently"}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// Is reports whether err carries code c.
func Is(err error, c Code) bool {
	return err != nil && CodeOf(err) == c
}

// Message returns the user-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "something went wrong"
}

// Wrap keeps coded errors as they are and turns anything else into a
// record error for op. Adapters use it at their boundary.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Record(op, err)
}
