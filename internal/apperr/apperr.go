// Package apperr defines the application error taxonomy. Services return
// kinded errors; the HTTP boundary translates kinds to status codes.
package apperr

import "errors"

type Kind int

const (
	// KindUnknown covers errors produced outside the taxonomy.
	KindUnknown Kind = iota
	// KindNotFound: a resource id does not resolve.
	KindNotFound
	// KindPermissionDenied: the authorization policy returned deny.
	KindPermissionDenied
	// KindInvalidState: a lifecycle precondition was violated.
	KindInvalidState
	// KindValidation: a required field is missing or malformed.
	KindValidation
	// KindConflict: a uniqueness constraint was violated.
	KindConflict
	// KindDependency: an external collaborator (mail, storage) failed.
	KindDependency
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func PermissionDenied(message string) *Error {
	return &Error{Kind: KindPermissionDenied, Message: message}
}

func InvalidState(message string) *Error {
	return &Error{Kind: KindInvalidState, Message: message}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Dependency wraps a collaborator failure. The wrapped error is kept for
// logging; only the summary message is surfaced to callers.
func Dependency(message string, err error) *Error {
	return &Error{Kind: KindDependency, Message: message, Err: err}
}

// KindOf extracts the taxonomy kind from an error chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// MessageOf returns the caller-safe message for an error chain. Wrapped
// dependency detail is not included.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
