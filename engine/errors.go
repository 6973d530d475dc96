/*
errors.go - Centralized error kinds for the engine

PURPOSE:
  All error types in one place. Every operation failure maps to exactly
  one of four kinds, and callers dispatch with errors.Is / errors.As:

  ValidationError  malformed or out-of-range input; never retried
  ConflictError    invariant or workflow-table violation; retry after
                   re-reading state
  NotFoundError    unknown identifier; never retried
  PermissionError  role/ownership check failed; never retried

  Store-layer transient failures are a fifth, infrastructure-level
  category (ErrStoreUnavailable); only read-side computations retry them,
  with bounded attempts.

USAGE:
  if engine.IsConflict(err) { ... }

  var ve *engine.ValidationError
  if errors.As(err, &ve) { ... }

SEE ALSO:
  - ledger.go, workflow.go: Producers of these errors
  - api/handlers.go: Maps kinds to HTTP status codes
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation marks malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict marks a ledger-invariant or workflow-transition violation.
	ErrConflict = errors.New("conflict")

	// ErrNotFound marks an unknown identifier.
	ErrNotFound = errors.New("not found")

	// ErrPermission marks a failed role or ownership check.
	ErrPermission = errors.New("permission denied")

	// ErrStoreUnavailable marks a transient store failure (timeout,
	// connection loss). Read-side callers may retry; writers never do.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry context, unwrap to the sentinels
// =============================================================================

// ValidationError reports invalid input for a named field or rule.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Reason)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConflictError reports a violated invariant or an illegal transition.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return fmt.Sprintf("conflict: %s", e.Reason) }
func (e *ConflictError) Unwrap() error { return ErrConflict }

// OverlapError is a ConflictError variant that names the interval the
// candidate range collided with.
type OverlapError struct {
	EmployeeID EmployeeID
	ExistingID IntervalID
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("conflict: interval overlaps existing interval %s", e.ExistingID)
}

func (e *OverlapError) Unwrap() error { return ErrConflict }

// NotFoundError reports an unknown identifier.
type NotFoundError struct {
	Kind string // "interval", "leave request", "employee"
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Kind, e.ID) }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// PermissionError reports a failed ownership or role check.
type PermissionError struct {
	Actor  EmployeeID
	Action string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s may not %s", e.Actor, e.Action)
}

func (e *PermissionError) Unwrap() error { return ErrPermission }

// InsufficientBalanceError reports an approval that would overdraw the
// yearly allocation.
type InsufficientBalanceError struct {
	EmployeeID EmployeeID
	Type       LeaveType
	Year       int
	Allocated  int
	Used       int
	Requested  int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("validation: insufficient %s balance for %d: allocated %d, used %d, requested %d",
		e.Type, e.Year, e.Allocated, e.Used, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrValidation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsConflict(err error) bool   { return errors.Is(err, ErrConflict) }
func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsPermission(err error) bool { return errors.Is(err, ErrPermission) }

// IsRetryable reports whether a retry might succeed without the caller
// re-reading state first. Only transient store failures qualify.
func IsRetryable(err error) bool { return errors.Is(err, ErrStoreUnavailable) }
