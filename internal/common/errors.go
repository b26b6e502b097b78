// Package common defines the sentinel errors shared by the store adapters,
// the core services and the HTTP boundary. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Input validation.
	ErrorInvalidInput = errors.New("invalid input")

	// Account lifecycle errors.
	ErrorAlreadyActive      = errors.New("account already activated")
	ErrorInvalidCredentials = errors.New("invalid credentials")
	ErrorNotActivated       = errors.New("account not activated")
	ErrorUnauthorized       = errors.New("unauthorized")

	// Auth errors (bad signature, expired, wrong purpose, or a reset token
	// that does not match the stored one).
	ErrInvalidToken = errors.New("invalid token")

	// Short-code assignment gave up after the configured number of attempts.
	ErrorResourceExhausted = errors.New("resource exhausted")

	// Service-level catch-all for store/notifier failures.
	ErrorInternal = errors.New("internal error")
)

// InternalError records which collaborator failed during which operation.
// It matches ErrorInternal via errors.Is and unwraps to the cause.
type InternalError struct {
	Collaborator string
	Op           string
	Err          error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Collaborator, e.Err)
}

func (e *InternalError) Unwrap() error { return e.Err }

func (e *InternalError) Is(target error) bool { return target == ErrorInternal }

// Internal wraps err as an InternalError. A nil err yields nil.
func Internal(collaborator, op string, err error) error {
	if err == nil {
		return nil
	}
	return &InternalError{Collaborator: collaborator, Op: op, Err: err}
}
