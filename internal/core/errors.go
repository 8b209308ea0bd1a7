package core

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned by login when the email/password pair
// does not resolve to a user. It deliberately does not distinguish between
// an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ValidationError reports a missing or invalid required field: a blank
// name, a non-positive amount, an unresolvable foreign reference.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// DuplicateError reports a uniqueness violation, such as a second budget
// for the same (user, category, month) or a signup with a taken email.
type DuplicateError struct {
	Resource string
	Key      string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already exists for %s", e.Resource, e.Key)
}

// NotFoundError reports that the target of an operation does not exist.
// The original treated this as a silent no-op; here it is surfaced.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDuplicate reports whether err is a DuplicateError.
func IsDuplicate(err error) bool {
	var de *DuplicateError
	return errors.As(err, &de)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
