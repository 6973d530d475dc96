/*
store.go - Persistence interfaces consumed by the engine

PURPOSE:
  Defines the contract between the domain logic and the durable store.
  Implementations exist for SQLite (store/sqlite) and in-memory
  (engine/store, used in tests).

CONSISTENCY CONTRACT:
  The engine serializes all mutating operations per employee (locks.go),
  so implementations only need read-committed consistency: a reader may
  or may not see a concurrently-committing write. Implementations must
  be safe for concurrent use.

TRANSIENT FAILURES:
  A store signals a transient failure (timeout, connection loss) by
  returning an error wrapping ErrStoreUnavailable. Read-side callers
  retry such errors with bounded attempts (ReadRetry); mutating
  operations never retry, keeping the per-employee region at-most-once.

SEE ALSO:
  - store/sqlite/sqlite.go: Production implementation
  - engine/store/memory.go: Test implementation
*/
package engine

import (
	"context"
	"time"
)

// =============================================================================
// STORE INTERFACES
// =============================================================================

// IntervalStore persists work intervals. Get returns nil (not an error)
// when the id is unknown; callers turn that into NotFoundError.
type IntervalStore interface {
	CreateInterval(ctx context.Context, iv Interval) error
	GetInterval(ctx context.Context, id IntervalID) (*Interval, error)
	UpdateInterval(ctx context.Context, iv Interval) error
	DeleteInterval(ctx context.Context, id IntervalID) error

	// ListIntervals returns the employee's intervals whose range
	// intersects [from, to), ordered by start then id. Open intervals
	// are treated as extending to +inf.
	ListIntervals(ctx context.Context, employeeID EmployeeID, from, to time.Time) ([]Interval, error)

	// OpenInterval returns the employee's open interval, or nil.
	OpenInterval(ctx context.Context, employeeID EmployeeID) (*Interval, error)

	// PendingIntervals returns manual, not-yet-approved intervals.
	PendingIntervals(ctx context.Context) ([]Interval, error)
}

// LeaveStore persists leave requests.
type LeaveStore interface {
	CreateLeaveRequest(ctx context.Context, lr LeaveRequest) error
	GetLeaveRequest(ctx context.Context, id RequestID) (*LeaveRequest, error)
	UpdateLeaveRequest(ctx context.Context, lr LeaveRequest) error

	// ListLeaveRequests returns all of the employee's requests, newest
	// first.
	ListLeaveRequests(ctx context.Context, employeeID EmployeeID) ([]LeaveRequest, error)

	// PendingLeaveRequests returns all pending requests, oldest first.
	PendingLeaveRequests(ctx context.Context) ([]LeaveRequest, error)
}

// EmployeeStore persists the employee registry. Identity and role still
// arrive verified per-request; the registry backs admin listings.
type EmployeeStore interface {
	PutEmployee(ctx context.Context, e Employee) error
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
}

// Store is the full persistence surface the engine consumes.
type Store interface {
	IntervalStore
	LeaveStore
	EmployeeStore
}

// =============================================================================
// READ-SIDE RETRY
// =============================================================================

// readAttempts bounds retries of transient store failures on the read
// side. Mutating operations never retry.
const readAttempts = 3

// ReadRetry runs fn, retrying up to readAttempts times when the error is
// transient (wraps ErrStoreUnavailable). Any other error, or context
// cancellation, stops immediately.
func ReadRetry[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var out T
	var err error
	for attempt := 0; attempt < readAttempts; attempt++ {
		out, err = fn(ctx)
		if err == nil || !IsRetryable(err) {
			return out, err
		}
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 50 * time.Millisecond):
		}
	}
	return out, err
}
