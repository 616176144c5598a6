package slim

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateUser is returned by SignUp when the username is taken.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrUserNotFound is returned by LogIn for an unknown username.
	ErrUserNotFound = errors.New("user not found")

	// ErrBadCredential is returned by LogIn when the password does not match,
	// and when an export is opened with the wrong passphrase.
	ErrBadCredential = errors.New("incorrect password")

	// ErrCollaboratorUnavailable means the AI collaborator failed or returned
	// data that could not be parsed. Callers treat it as "no result".
	ErrCollaboratorUnavailable = errors.New("ai collaborator unavailable")

	// ErrNoSession is returned by operations that need a logged-in user.
	ErrNoSession = errors.New("not logged in")

	// ErrRequestInFlight is returned when an interactive flow already has a
	// pending collaborator request.
	ErrRequestInFlight = errors.New("a request for this flow is already in progress")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
