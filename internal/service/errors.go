package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure so transports can map it to a status.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindAuth       Kind = "auth"
	KindForbidden  Kind = "forbidden"
	KindNotFound   Kind = "not_found"
	KindInternal   Kind = "internal"
)

// Error is a failure whose Message is safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindInternal for anything unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func validationError(msg string) error { return &Error{Kind: KindValidation, Message: msg} }
func conflictError(msg string) error   { return &Error{Kind: KindConflict, Message: msg} }
func forbiddenError(msg string) error  { return &Error{Kind: KindForbidden, Message: msg} }

func authError(msg string, err error) error {
	return &Error{Kind: KindAuth, Message: msg, Err: err}
}

func notFoundError(msg string, err error) error {
	return &Error{Kind: KindNotFound, Message: msg, Err: err}
}

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	// Unknown email and wrong password both produce it.
	ErrInvalidCredentials = authError("Invalid credentials", nil)
	// ErrInvalidToken indicates a bearer token that failed verification.
	ErrInvalidToken = authError("Invalid token", nil)
	// ErrUserAlreadyExists is returned when signing up with a registered email.
	ErrUserAlreadyExists = conflictError("Email already exists")
	// ErrUserNotFound is returned when a valid token names a user that no longer exists.
	ErrUserNotFound = notFoundError("User not found", nil)
	// ErrTaskNotFound is returned when no task has the requested id.
	ErrTaskNotFound = notFoundError("Todo not found", nil)
)
