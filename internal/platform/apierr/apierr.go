package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation   = "validation_error"
	CodeNotFound     = "not_found"
	CodeUnauthorized = "unauthorized"
	CodeInternal     = "internal_error"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotFound) match any *Error carrying the not_found code.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrValidation:
		return e.Code == CodeValidation
	case ErrNotFound:
		return e.Code == CodeNotFound
	case ErrUnauthorized:
		return e.Code == CodeUnauthorized
	case ErrInternal:
		return e.Code == CodeInternal
	}
	return false
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(format string, args ...any) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Errorf(format, args...))
}

func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

func Unauthorized(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, fmt.Errorf(format, args...))
}

// Internal wraps an unexpected failure. The cause stays reachable through Unwrap for logging,
// PublicMessage hides it from clients.
func Internal(err error) *Error {
	if err == nil {
		err = ErrInternal
	}
	return New(http.StatusInternalServerError, CodeInternal, err)
}

// PublicMessage is the text safe to send to a client.
func (e *Error) PublicMessage() string {
	if e == nil {
		return ""
	}
	if e.Code == CodeInternal || e.Status >= http.StatusInternalServerError {
		return "internal server error"
	}
	return e.Error()
}

// As extracts the *Error from err, if any.
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr, true
	}
	return nil, false
}
