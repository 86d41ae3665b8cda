package services

import (
	"errors"
	"fmt"
)

// Failure taxonomy of the collaboration engine. Every operation returns
// one of these (or nil); raw storage errors never cross the service
// boundary. Handlers map the taxonomy to HTTP statuses in one place.

// Expected races. Callers should treat these as benign signals and
// re-fetch state rather than as failures.
var (
	// ErrAlreadyInvited is returned when an active (pending or accepted)
	// invitation already exists for the same project and email.
	ErrAlreadyInvited = errors.New("an active invitation already exists for this email")

	// ErrStaleInvitation is returned when an invitation has already
	// reached a terminal state by the time the caller acts on it.
	ErrStaleInvitation = errors.New("invitation is no longer pending")
)

// ValidationError reports malformed or empty input. Always recoverable;
// the message is surfaced verbatim to the caller.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// AuthorizationError reports that the caller lacks the role or ownership
// an operation requires. Never retried automatically.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

func NewAuthorizationError(format string, args ...interface{}) *AuthorizationError {
	return &AuthorizationError{Msg: fmt.Sprintf(format, args...)}
}

// InvariantError reports an operation that would violate a data-model
// invariant, e.g. assigning a task to a non-member.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return e.Msg }

func NewInvariantError(format string, args ...interface{}) *InvariantError {
	return &InvariantError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

func NewNotFoundError(entity string) *NotFoundError {
	return &NotFoundError{Entity: entity}
}

// CascadeError reports an aborted multi-entity transaction. No partial
// state persists, so the caller may retry the whole operation.
type CascadeError struct {
	Op  string
	Err error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("%s cascade aborted: %v", e.Op, e.Err)
}

func (e *CascadeError) Unwrap() error { return e.Err }
