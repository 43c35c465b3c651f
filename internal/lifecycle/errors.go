package lifecycle

import (
	"errors"
	"fmt"

	"github.com/iamankun/studio-sub000/internal/models"
)

// The tagged error kinds every public Service operation may return. Nothing
// else crosses the service boundary; callers classify with [errors.As].

// AuthorizationDeniedError reports a failed permission check. Reason carries
// the exact rule that was violated.
type AuthorizationDeniedError struct {
	Reason string
}

func (e *AuthorizationDeniedError) Error() string {
	return fmt.Sprintf("authorization denied: %s", e.Reason)
}

// InvalidTransitionError reports a status change with no legal edge.
type InvalidTransitionError struct {
	From models.Status
	To   models.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: %s -> %s", e.From, e.To)
}

// ValidationError reports malformed or missing required input.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Detail)
}

// NotFoundError reports a missing submission or track.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.ID)
}

// ConflictError reports an optimistic-concurrency version mismatch. The
// caller may retry with a fresh read; the engine never retries internally.
type ConflictError struct {
	ID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting update on %s", e.ID)
}

// StoreUnavailableError reports a failed persistence or counter port call,
// propagated unchanged. Retry policy belongs to the caller.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable during %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// IsDenied reports whether err is an authorization denial.
func IsDenied(err error) bool {
	var denied *AuthorizationDeniedError
	return errors.As(err, &denied)
}

// IsConflict reports whether err is a version conflict.
func IsConflict(err error) bool {
	var conflict *ConflictError
	return errors.As(err, &conflict)
}

// IsNotFound reports whether err is a missing-record error.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
