/*
ledger.go - Interval lifecycle and the ledger invariants

PURPOSE:
  The IntervalLedger is the sole writer of work intervals. It owns the
  start/stop tracking flow, manual after-the-fact entries, edits and
  deletes, and enforces the three ledger invariants:

    I1: at most one open interval per employee
    I2: no two intervals of one employee overlap
        (open intervals occupy [start, +inf))
    I3: end, when present, is strictly after start

CONCURRENCY:
  Every mutating operation runs inside the employee's lock region
  (EmployeeLocks). The overlap/open checks and the subsequent write are
  therefore atomic with respect to other mutations for the same
  employee; two racing Start calls cannot both observe "no open
  interval".

APPROVAL:
  Live entries (created via Start/Stop) are approved on creation. Manual
  entries wait for admin approval (workflow.go). Editing a manual entry
  resets its approval.

SEE ALSO:
  - workflow.go: Manual-interval approval
  - locks.go: Per-employee serialization
*/
package engine

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// IntervalLedger owns creation, closing, editing and deletion of work
// intervals.
type IntervalLedger struct {
	store   Store
	policy  Policy
	auditor *Auditor
	locks   *EmployeeLocks
	log     zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

func NewIntervalLedger(store Store, policy Policy, auditor *Auditor, locks *EmployeeLocks, log zerolog.Logger) *IntervalLedger {
	return &IntervalLedger{
		store:   store,
		policy:  policy,
		auditor: auditor,
		locks:   locks,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the ledger's clock. Test hook.
func (l *IntervalLedger) WithClock(now func() time.Time) *IntervalLedger {
	l.now = now
	return l
}

// =============================================================================
// LIVE TRACKING - Start / Stop
// =============================================================================

// Start opens a new interval for the employee. Fails with ConflictError
// if an open interval already exists (I1) or if the open range
// [now, +inf) would overlap an existing interval (I2), as it does when a
// manual entry already covers the current time. Live entries need no
// approval.
func (l *IntervalLedger) Start(ctx context.Context, actor Actor, employeeID EmployeeID, description string) (Interval, error) {
	if err := l.requireOwnerOrAdmin(actor, employeeID, "start an interval for another employee"); err != nil {
		return Interval{}, err
	}

	defer l.locks.Acquire(employeeID)()

	open, err := l.store.OpenInterval(ctx, employeeID)
	if err != nil {
		return Interval{}, err
	}
	if open != nil {
		return Interval{}, &ConflictError{Reason: "an open interval already exists"}
	}

	now := l.now()
	if err := l.checkNoOverlap(ctx, employeeID, now, nil, ""); err != nil {
		return Interval{}, err
	}
	iv := Interval{
		ID:          IntervalID(uuid.NewString()),
		EmployeeID:  employeeID,
		Start:       now,
		Description: description,
		Manual:      false,
		Approved:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := l.store.CreateInterval(ctx, iv); err != nil {
		return Interval{}, err
	}

	l.auditor.Emit(ctx, AuditEvent{
		ActorID:    actor.ID,
		EmployeeID: employeeID,
		Action:     AuditIntervalStarted,
		ResourceID: string(iv.ID),
	})
	l.log.Info().Str("interval_id", string(iv.ID)).Str("employee_id", string(employeeID)).Msg("interval started")
	return iv, nil
}

// Stop closes an open interval at endTime. Fails with NotFoundError for
// an unknown id, ValidationError when the interval is already closed or
// endTime is not after the start (I3).
func (l *IntervalLedger) Stop(ctx context.Context, actor Actor, id IntervalID, endTime time.Time) (Interval, error) {
	iv, err := l.mustGet(ctx, id)
	if err != nil {
		return Interval{}, err
	}
	if err := l.requireOwnerOrAdmin(actor, iv.EmployeeID, "stop another employee's interval"); err != nil {
		return Interval{}, err
	}

	defer l.locks.Acquire(iv.EmployeeID)()

	// Re-read inside the lock: the interval may have been closed or
	// deleted while we waited.
	iv, err = l.mustGet(ctx, id)
	if err != nil {
		return Interval{}, err
	}
	if !iv.IsOpen() {
		return Interval{}, &ValidationError{Field: "end", Reason: "interval is already closed"}
	}
	endTime = endTime.UTC()
	if !endTime.After(iv.Start) {
		return Interval{}, &ValidationError{Field: "end", Reason: "end must be after start"}
	}

	iv.End = &endTime
	iv.UpdatedAt = l.now()
	if err := l.store.UpdateInterval(ctx, iv); err != nil {
		return Interval{}, err
	}

	l.auditor.Emit(ctx, AuditEvent{
		ActorID:    actor.ID,
		EmployeeID: iv.EmployeeID,
		Action:     AuditIntervalStopped,
		ResourceID: string(iv.ID),
	})
	return iv, nil
}

// =============================================================================
// MANUAL ENTRIES
// =============================================================================

// CreateManual records an after-the-fact interval. Fails with
// ValidationError when end is not after start (I3), ConflictError when
// the range overlaps an existing interval, open intervals included (I2).
// Manual entries start unapproved.
func (l *IntervalLedger) CreateManual(ctx context.Context, actor Actor, employeeID EmployeeID, start, end time.Time, description string) (Interval, error) {
	if err := l.requireOwnerOrAdmin(actor, employeeID, "create an interval for another employee"); err != nil {
		return Interval{}, err
	}
	start, end = start.UTC(), end.UTC()
	if !end.After(start) {
		return Interval{}, &ValidationError{Field: "end", Reason: "end must be after start"}
	}

	defer l.locks.Acquire(employeeID)()

	if err := l.checkNoOverlap(ctx, employeeID, start, &end, ""); err != nil {
		return Interval{}, err
	}

	now := l.now()
	iv := Interval{
		ID:          IntervalID(uuid.NewString()),
		EmployeeID:  employeeID,
		Start:       start,
		End:         &end,
		Description: description,
		Manual:      true,
		Approved:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := l.store.CreateInterval(ctx, iv); err != nil {
		return Interval{}, err
	}

	l.auditor.Emit(ctx, AuditEvent{
		ActorID:    actor.ID,
		EmployeeID: employeeID,
		Action:     AuditIntervalCreated,
		ResourceID: string(iv.ID),
	})
	return iv, nil
}

// Edit applies a patch to an interval, re-validating I2/I3 against the
// patched range before committing. Editing a manual interval resets its
// approval. An approved manual interval is locked against owner edits
// when the policy says so; an admin edit goes through and resets the
// approval.
func (l *IntervalLedger) Edit(ctx context.Context, actor Actor, id IntervalID, patch IntervalPatch) (Interval, error) {
	iv, err := l.mustGet(ctx, id)
	if err != nil {
		return Interval{}, err
	}
	if err := l.requireOwnerOrAdmin(actor, iv.EmployeeID, "edit another employee's interval"); err != nil {
		return Interval{}, err
	}

	defer l.locks.Acquire(iv.EmployeeID)()

	iv, err = l.mustGet(ctx, id)
	if err != nil {
		return Interval{}, err
	}
	if l.lockedForOwner(iv) && !actor.IsAdmin() {
		return Interval{}, &PermissionError{Actor: actor.ID, Action: "edit an approved interval"}
	}

	patched := iv
	if patch.Start != nil {
		patched.Start = patch.Start.UTC()
	}
	if patch.End != nil {
		e := patch.End.UTC()
		patched.End = &e
	}
	if patch.Description != nil {
		patched.Description = *patch.Description
	}

	if patched.End != nil && !patched.End.After(patched.Start) {
		return Interval{}, &ValidationError{Field: "end", Reason: "end must be after start"}
	}
	if patch.Start != nil || patch.End != nil {
		if err := l.checkNoOverlap(ctx, patched.EmployeeID, patched.Start, patched.End, patched.ID); err != nil {
			return Interval{}, err
		}
	}

	if patched.Manual {
		patched.Approved = false
		patched.ApprovedBy = nil
		patched.ApprovedAt = nil
	}
	patched.UpdatedAt = l.now()

	if err := l.store.UpdateInterval(ctx, patched); err != nil {
		return Interval{}, err
	}

	l.auditor.Emit(ctx, AuditEvent{
		ActorID:    actor.ID,
		EmployeeID: patched.EmployeeID,
		Action:     AuditIntervalEdited,
		ResourceID: string(patched.ID),
	})
	return patched, nil
}

// Delete removes an interval. The owner may delete their own interval
// unless it is approved-and-locked; an admin may always delete.
func (l *IntervalLedger) Delete(ctx context.Context, actor Actor, id IntervalID) error {
	iv, err := l.mustGet(ctx, id)
	if err != nil {
		return err
	}

	defer l.locks.Acquire(iv.EmployeeID)()

	// Re-read inside the lock and decide permissions on that state: an
	// approval may have landed while we waited, and a concurrent delete
	// should surface as NotFound rather than a silent double-delete.
	iv, err = l.mustGet(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() {
		if actor.ID != iv.EmployeeID {
			return &PermissionError{Actor: actor.ID, Action: "delete another employee's interval"}
		}
		if l.lockedForOwner(iv) {
			return &PermissionError{Actor: actor.ID, Action: "delete an approved interval"}
		}
	}
	if err := l.store.DeleteInterval(ctx, id); err != nil {
		return err
	}

	l.auditor.Emit(ctx, AuditEvent{
		ActorID:    actor.ID,
		EmployeeID: iv.EmployeeID,
		Action:     AuditIntervalDeleted,
		ResourceID: string(id),
	})
	return nil
}

// =============================================================================
// READS
// =============================================================================

// List returns the employee's intervals intersecting [from, to), sorted
// by start then id. Employees see their own intervals; admins see
// anyone's.
func (l *IntervalLedger) List(ctx context.Context, actor Actor, employeeID EmployeeID, from, to time.Time) ([]Interval, error) {
	if err := l.requireOwnerOrAdmin(actor, employeeID, "list another employee's intervals"); err != nil {
		return nil, err
	}
	return ReadRetry(ctx, func(ctx context.Context) ([]Interval, error) {
		ivs, err := l.store.ListIntervals(ctx, employeeID, from, to)
		if err != nil {
			return nil, err
		}
		sortIntervals(ivs)
		return ivs, nil
	})
}

// Pending returns manual intervals awaiting approval. Admin only.
func (l *IntervalLedger) Pending(ctx context.Context, actor Actor) ([]Interval, error) {
	if !actor.IsAdmin() {
		return nil, &PermissionError{Actor: actor.ID, Action: "list pending intervals"}
	}
	return ReadRetry(ctx, func(ctx context.Context) ([]Interval, error) {
		return l.store.PendingIntervals(ctx)
	})
}

// =============================================================================
// INTERNALS
// =============================================================================

func (l *IntervalLedger) mustGet(ctx context.Context, id IntervalID) (Interval, error) {
	iv, err := l.store.GetInterval(ctx, id)
	if err != nil {
		return Interval{}, err
	}
	if iv == nil {
		return Interval{}, &NotFoundError{Kind: "interval", ID: string(id)}
	}
	return *iv, nil
}

func (l *IntervalLedger) requireOwnerOrAdmin(actor Actor, owner EmployeeID, action string) error {
	if actor.ID == owner || actor.IsAdmin() {
		return nil
	}
	return &PermissionError{Actor: actor.ID, Action: action}
}

func (l *IntervalLedger) lockedForOwner(iv Interval) bool {
	return l.policy.LockApprovedIntervals && iv.Manual && iv.Approved
}

// checkNoOverlap rejects a candidate range [s, e) (e == nil meaning
// open-ended) that intersects any of the employee's intervals other
// than excludeID. Must run inside the employee's lock region.
func (l *IntervalLedger) checkNoOverlap(ctx context.Context, employeeID EmployeeID, s time.Time, e *time.Time, excludeID IntervalID) error {
	// A far horizon turns the half-open list query into "everything
	// from s onwards"; earlier intervals ending after s still intersect.
	horizon := s.AddDate(100, 0, 0)
	if e != nil {
		horizon = *e
	}
	existing, err := l.store.ListIntervals(ctx, employeeID, time.Time{}, horizon)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID == excludeID {
			continue
		}
		if other.Overlaps(s, e) {
			return &OverlapError{EmployeeID: employeeID, ExistingID: other.ID}
		}
	}
	return nil
}

func sortIntervals(ivs []Interval) {
	sort.Slice(ivs, func(i, j int) bool {
		if ivs[i].Start.Equal(ivs[j].Start) {
			return ivs[i].ID < ivs[j].ID
		}
		return ivs[i].Start.Before(ivs[j].Start)
	})
}
