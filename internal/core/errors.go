package core

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
)

// Error is a domain error carrying a canonical status code. Handlers translate
// the code to the transport status; the message is safe to show to clients.
type Error struct {
	Code    codes.Code
	Message string
	// RetryAfterMinutes is set on ResourceExhausted errors from the suggestion gate.
	RetryAfterMinutes int
	Err               error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so errors.Is(err, ErrNotFound)
// holds for every not-found error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Sentinel errors, compared by code.
var (
	ErrUnauthenticated   = &Error{Code: codes.Unauthenticated}
	ErrInvalidArgument   = &Error{Code: codes.InvalidArgument}
	ErrNotFound          = &Error{Code: codes.NotFound}
	ErrPermissionDenied  = &Error{Code: codes.PermissionDenied}
	ErrResourceExhausted = &Error{Code: codes.ResourceExhausted}
	ErrAlreadyExists     = &Error{Code: codes.AlreadyExists}
	ErrUpstream          = &Error{Code: codes.Unavailable}
)

func newError(code codes.Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func wrapError(code codes.Code, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the status code of err, codes.Internal for errors that are not domain errors.
func CodeOf(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return codes.Internal
}
