package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers unknown ids and codes. Lookups fail closed; the
	// redirect surface maps this to a generic "invalid or expired" message.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidTransition marks a sale status change outside the allowed
	// table. Reachable only through defense-in-depth checks.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDuplicateRequest is recoverable: the caller already holds the row
	// it asked to create.
	ErrDuplicateRequest = errors.New("duplicate request")
)

// ValidationError reports malformed input on a specific field. Surfaced
// directly to the initiating action, never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
