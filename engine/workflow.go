/*
workflow.go - Approval state machines for leave requests and manual intervals

PURPOSE:
  Drives leave requests through pending → approved/rejected/canceled and
  manual intervals through unapproved → approved. Transitions not in the
  table are rejected with ConflictError; terminal states are absorbing.

TRANSITION TABLE (leave requests):
  pending  → approved   admin, requires sufficient balance
  pending  → rejected   admin, rejection reason required
  pending  → canceled   owner
  approved → (none)
  rejected → (none)
  canceled → (none)

BALANCE CHECK:
  Approval consults the LeaveBalanceTracker for every calendar year the
  request touches. If approving would push used days over the yearly
  allocation for any of those years, the transition fails with
  ValidationError (strict policy).

SEE ALSO:
  - balance.go: Used/remaining computation
  - ledger.go: Where manual intervals come from
*/
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// leaveTransitions is the closed transition table. Anything absent is an
// illegal transition.
var leaveTransitions = map[RequestStatus]map[RequestStatus]bool{
	StatusPending: {
		StatusApproved: true,
		StatusRejected: true,
		StatusCanceled: true,
	},
}

func transitionAllowed(from, to RequestStatus) bool {
	return leaveTransitions[from][to]
}

// ApprovalWorkflow mutates the status fields of leave requests and
// manual intervals. It shares the ledger's per-employee locks so that a
// balance check and its approval commit cannot interleave with another
// mutation for the same employee.
type ApprovalWorkflow struct {
	store   Store
	policy  Policy
	balance *LeaveBalanceTracker
	auditor *Auditor
	locks   *EmployeeLocks
	log     zerolog.Logger
	now     func() time.Time
}

func NewApprovalWorkflow(store Store, policy Policy, balance *LeaveBalanceTracker, auditor *Auditor, locks *EmployeeLocks, log zerolog.Logger) *ApprovalWorkflow {
	return &ApprovalWorkflow{
		store:   store,
		policy:  policy,
		balance: balance,
		auditor: auditor,
		locks:   locks,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the workflow's clock. Test hook.
func (w *ApprovalWorkflow) WithClock(now func() time.Time) *ApprovalWorkflow {
	w.now = now
	return w
}

// =============================================================================
// LEAVE REQUEST LIFECYCLE
// =============================================================================

// CreateLeaveRequest submits a new pending request. Dates are
// day-granular and inclusive; end_date must not precede start_date (L1).
// A request that overlaps one of the employee's pending or approved
// requests is rejected.
func (w *ApprovalWorkflow) CreateLeaveRequest(ctx context.Context, actor Actor, employeeID EmployeeID, leaveType LeaveType, startDate, endDate time.Time, reason string) (LeaveRequest, error) {
	if actor.ID != employeeID && !actor.IsAdmin() {
		return LeaveRequest{}, &PermissionError{Actor: actor.ID, Action: "request leave for another employee"}
	}
	if !leaveType.Valid() {
		return LeaveRequest{}, &ValidationError{Field: "type", Reason: "unknown leave type"}
	}
	startDate, endDate = DayOf(startDate), DayOf(endDate)
	if endDate.Before(startDate) {
		return LeaveRequest{}, &ValidationError{Field: "end_date", Reason: "end_date must not precede start_date"}
	}

	defer w.locks.Acquire(employeeID)()

	existing, err := w.store.ListLeaveRequests(ctx, employeeID)
	if err != nil {
		return LeaveRequest{}, err
	}
	for _, other := range existing {
		if other.Status != StatusPending && other.Status != StatusApproved {
			continue
		}
		if !startDate.After(other.EndDate) && !other.StartDate.After(endDate) {
			return LeaveRequest{}, &ConflictError{Reason: "a leave request already covers part of this period"}
		}
	}

	now := w.now()
	lr := LeaveRequest{
		ID:         RequestID(uuid.NewString()),
		EmployeeID: employeeID,
		Type:       leaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		Status:     StatusPending,
		Reason:     reason,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := w.store.CreateLeaveRequest(ctx, lr); err != nil {
		return LeaveRequest{}, err
	}

	w.auditor.Emit(ctx, AuditEvent{
		ActorID:    actor.ID,
		EmployeeID: employeeID,
		Action:     AuditRequestCreated,
		ResourceID: string(lr.ID),
		NewStatus:  string(StatusPending),
	})
	return lr, nil
}

// Approve moves a pending request to approved. Admin only. Fails with
// ValidationError when the approval would overdraw the allocation of
// any year the request touches.
func (w *ApprovalWorkflow) Approve(ctx context.Context, actor Actor, id RequestID) (LeaveRequest, error) {
	if !actor.IsAdmin() {
		return LeaveRequest{}, &PermissionError{Actor: actor.ID, Action: "approve leave requests"}
	}
	return w.transition(ctx, actor, id, StatusApproved, func(lr LeaveRequest) error {
		return w.checkBalanceForApproval(ctx, lr)
	}, func(lr *LeaveRequest) {
		lr.DecidedBy = &actor.ID
		at := w.now()
		lr.DecidedAt = &at
	})
}

// Reject moves a pending request to rejected. Admin only; a reason is
// required.
func (w *ApprovalWorkflow) Reject(ctx context.Context, actor Actor, id RequestID, reason string) (LeaveRequest, error) {
	if !actor.IsAdmin() {
		return LeaveRequest{}, &PermissionError{Actor: actor.ID, Action: "reject leave requests"}
	}
	if reason == "" {
		return LeaveRequest{}, &ValidationError{Field: "rejection_reason", Reason: "a rejection reason is required"}
	}
	return w.transition(ctx, actor, id, StatusRejected, nil, func(lr *LeaveRequest) {
		lr.DecidedBy = &actor.ID
		at := w.now()
		lr.DecidedAt = &at
		lr.RejectionReason = reason
	})
}

// Cancel moves a pending request to canceled. Owner only.
func (w *ApprovalWorkflow) Cancel(ctx context.Context, actor Actor, id RequestID) (LeaveRequest, error) {
	lr, err := w.mustGetRequest(ctx, id)
	if err != nil {
		return LeaveRequest{}, err
	}
	if actor.ID != lr.EmployeeID {
		return LeaveRequest{}, &PermissionError{Actor: actor.ID, Action: "cancel another employee's leave request"}
	}
	return w.transition(ctx, actor, id, StatusCanceled, nil, nil)
}

// transition applies one table-checked status change inside the
// employee's lock region. check runs after the table check and may veto
// the transition; apply stamps decision fields on the way through.
func (w *ApprovalWorkflow) transition(ctx context.Context, actor Actor, id RequestID, to RequestStatus, check func(LeaveRequest) error, apply func(*LeaveRequest)) (LeaveRequest, error) {
	lr, err := w.mustGetRequest(ctx, id)
	if err != nil {
		return LeaveRequest{}, err
	}

	defer w.locks.Acquire(lr.EmployeeID)()

	lr, err = w.mustGetRequest(ctx, id)
	if err != nil {
		return LeaveRequest{}, err
	}
	from := lr.Status
	if !transitionAllowed(from, to) {
		return LeaveRequest{}, &ConflictError{Reason: "cannot move a " + string(from) + " request to " + string(to)}
	}
	if check != nil {
		if err := check(lr); err != nil {
			return LeaveRequest{}, err
		}
	}

	lr.Status = to
	if apply != nil {
		apply(&lr)
	}
	lr.UpdatedAt = w.now()
	if err := w.store.UpdateLeaveRequest(ctx, lr); err != nil {
		return LeaveRequest{}, err
	}

	w.auditor.Emit(ctx, AuditEvent{
		ActorID:    actor.ID,
		EmployeeID: lr.EmployeeID,
		Action:     auditActionFor(to),
		ResourceID: string(lr.ID),
		OldStatus:  string(from),
		NewStatus:  string(to),
	})
	w.log.Info().
		Str("request_id", string(lr.ID)).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("leave request transitioned")
	return lr, nil
}

// checkBalanceForApproval enforces the strict allocation policy for
// every calendar year the request intersects.
func (w *ApprovalWorkflow) checkBalanceForApproval(ctx context.Context, lr LeaveRequest) error {
	for year := lr.StartDate.Year(); year <= lr.EndDate.Year(); year++ {
		requested := OverlapDaysWithYear(lr.StartDate, lr.EndDate, year)
		if requested == 0 {
			continue
		}
		bal, err := w.balance.Balance(ctx, lr.EmployeeID, lr.Type, year)
		if err != nil {
			return err
		}
		if bal.Used+requested > bal.Allocated {
			return &InsufficientBalanceError{
				EmployeeID: lr.EmployeeID,
				Type:       lr.Type,
				Year:       year,
				Allocated:  bal.Allocated,
				Used:       bal.Used,
				Requested:  requested,
			}
		}
	}
	return nil
}

func auditActionFor(to RequestStatus) AuditAction {
	switch to {
	case StatusApproved:
		return AuditRequestApproved
	case StatusRejected:
		return AuditRequestRejected
	default:
		return AuditRequestCanceled
	}
}

// =============================================================================
// MANUAL INTERVAL APPROVAL
// =============================================================================

// ApproveInterval marks a manual interval approved. Admin only; there
// is no reverse transition, correction goes through delete and
// re-entry.
func (w *ApprovalWorkflow) ApproveInterval(ctx context.Context, actor Actor, id IntervalID) (Interval, error) {
	if !actor.IsAdmin() {
		return Interval{}, &PermissionError{Actor: actor.ID, Action: "approve intervals"}
	}

	iv, err := w.store.GetInterval(ctx, id)
	if err != nil {
		return Interval{}, err
	}
	if iv == nil {
		return Interval{}, &NotFoundError{Kind: "interval", ID: string(id)}
	}

	defer w.locks.Acquire(iv.EmployeeID)()

	iv, err = w.store.GetInterval(ctx, id)
	if err != nil {
		return Interval{}, err
	}
	if iv == nil {
		return Interval{}, &NotFoundError{Kind: "interval", ID: string(id)}
	}
	if !iv.Manual {
		return Interval{}, &ValidationError{Field: "manual", Reason: "live entries are approved on creation"}
	}
	if iv.Approved {
		return Interval{}, &ConflictError{Reason: "interval is already approved"}
	}

	out := *iv
	out.Approved = true
	out.ApprovedBy = &actor.ID
	at := w.now()
	out.ApprovedAt = &at
	out.UpdatedAt = at
	if err := w.store.UpdateInterval(ctx, out); err != nil {
		return Interval{}, err
	}

	w.auditor.Emit(ctx, AuditEvent{
		ActorID:    actor.ID,
		EmployeeID: out.EmployeeID,
		Action:     AuditIntervalApproved,
		ResourceID: string(out.ID),
		OldStatus:  "unapproved",
		NewStatus:  "approved",
	})
	return out, nil
}

// =============================================================================
// READS
// =============================================================================

// ListRequests returns the employee's leave requests. Owner or admin.
func (w *ApprovalWorkflow) ListRequests(ctx context.Context, actor Actor, employeeID EmployeeID) ([]LeaveRequest, error) {
	if actor.ID != employeeID && !actor.IsAdmin() {
		return nil, &PermissionError{Actor: actor.ID, Action: "list another employee's leave requests"}
	}
	return ReadRetry(ctx, func(ctx context.Context) ([]LeaveRequest, error) {
		return w.store.ListLeaveRequests(ctx, employeeID)
	})
}

// PendingRequests returns all pending leave requests. Admin only.
func (w *ApprovalWorkflow) PendingRequests(ctx context.Context, actor Actor) ([]LeaveRequest, error) {
	if !actor.IsAdmin() {
		return nil, &PermissionError{Actor: actor.ID, Action: "list pending leave requests"}
	}
	return ReadRetry(ctx, func(ctx context.Context) ([]LeaveRequest, error) {
		return w.store.PendingLeaveRequests(ctx)
	})
}

func (w *ApprovalWorkflow) mustGetRequest(ctx context.Context, id RequestID) (LeaveRequest, error) {
	lr, err := w.store.GetLeaveRequest(ctx, id)
	if err != nil {
		return LeaveRequest{}, err
	}
	if lr == nil {
		return LeaveRequest{}, &NotFoundError{Kind: "leave request", ID: string(id)}
	}
	return *lr, nil
}
