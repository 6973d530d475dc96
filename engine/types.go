/*
Package engine provides the time-interval and compliance core.

PURPOSE:
  This package contains the domain types and algorithms for recording
  employee working-time intervals, driving the approval workflow for
  manual entries and leave requests, computing leave balances, and
  evaluating statutory working-time compliance.

KEY CONCEPTS IN THIS FILE (types.go):
  - Interval: A contiguous span of worked time; open while End is nil
  - LeaveRequest: A dated request for vacation/sick/special leave
  - Policy: Immutable statutory and allocation limits, loaded once
  - Violation: A detected breach of a working-time limit

DESIGN PRINCIPLES:
  1. The ledger is the single source of truth for open intervals;
     clients never track "am I clocked in" state themselves.
  2. Workflow state is a closed enum with an explicit transition table,
     never loose boolean flags.
  3. Hour totals use decimal.Decimal to avoid floating-point drift.
  4. Policy is a value, passed into constructors; no ambient globals.

SEE ALSO:
  - ledger.go: Interval lifecycle and overlap invariants
  - workflow.go: Approval state machines
  - compliance.go: Weekly-hours and daily-rest evaluation
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type IntervalID string
type RequestID string

// =============================================================================
// EMPLOYEE - Owned by the identity provider, referenced here
// =============================================================================

type Role string

const (
	RoleNormal Role = "normal"
	RoleAdmin  Role = "admin"
)

// Employee is a reference record. The engine never mutates it; identity
// and role arrive verified on every request.
type Employee struct {
	ID     EmployeeID
	Name   string
	Email  string
	Role   Role
	Active bool
}

// Actor is the identity performing an operation, as supplied per-request
// by the identity provider.
type Actor struct {
	ID   EmployeeID
	Role Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// =============================================================================
// INTERVAL - A span of worked time
// =============================================================================

// Interval is a contiguous span of worked time. End == nil means the
// interval is open (work in progress).
//
// INVARIANTS (enforced by IntervalLedger):
//   I1: at most one open interval per employee
//   I2: no two intervals of the same employee overlap; an open interval
//       occupies [Start, +inf)
//   I3: End, when set, is strictly after Start
type Interval struct {
	ID          IntervalID
	EmployeeID  EmployeeID
	Start       time.Time
	End         *time.Time
	Description string

	// Manual entries are typed in after the fact and require approval.
	// Live (start/stop) entries are approved on creation.
	Manual   bool
	Approved bool

	ApprovedBy *EmployeeID
	ApprovedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOpen reports whether the interval is still being tracked.
func (iv Interval) IsOpen() bool { return iv.End == nil }

// Duration returns the closed interval's length. Zero for open intervals.
func (iv Interval) Duration() time.Duration {
	if iv.End == nil {
		return 0
	}
	return iv.End.Sub(iv.Start)
}

// Overlaps reports whether [s, e) intersects the interval's range, with
// an open interval treated as [Start, +inf). A nil e means the candidate
// itself is open-ended.
func (iv Interval) Overlaps(s time.Time, e *time.Time) bool {
	// s < existing.end
	if iv.End != nil && !s.Before(*iv.End) {
		return false
	}
	// existing.start < e
	if e != nil && !iv.Start.Before(*e) {
		return false
	}
	return true
}

// IntervalPatch carries the fields an edit may change. Nil means "leave
// as is". Clearing End (re-opening) is not supported.
type IntervalPatch struct {
	Start       *time.Time
	End         *time.Time
	Description *string
}

// =============================================================================
// LEAVE REQUEST - Dated, date-only, both endpoints inclusive
// =============================================================================

type LeaveType string

const (
	LeaveVacation      LeaveType = "vacation"
	LeaveSick          LeaveType = "sick_leave"
	LeaveSpecialPermit LeaveType = "special_permit"
)

func (t LeaveType) Valid() bool {
	switch t {
	case LeaveVacation, LeaveSick, LeaveSpecialPermit:
		return true
	}
	return false
}

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
	StatusCanceled RequestStatus = "canceled"
)

// Terminal reports whether no further transition may leave this status.
func (s RequestStatus) Terminal() bool { return s != StatusPending }

// LeaveRequest covers whole days; StartDate and EndDate are inclusive
// and carried at day granularity (UTC midnight).
type LeaveRequest struct {
	ID         RequestID
	EmployeeID EmployeeID
	Type       LeaveType
	StartDate  time.Time
	EndDate    time.Time
	Status     RequestStatus
	Reason     string

	// Set by approve/reject.
	DecidedBy       *EmployeeID
	DecidedAt       *time.Time
	RejectionReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Days returns the request length in whole days, both endpoints counted.
func (lr LeaveRequest) Days() int {
	return DaysInclusive(lr.StartDate, lr.EndDate)
}

// =============================================================================
// POLICY - Loaded once at startup, immutable for the process lifetime
// =============================================================================

// Policy holds the statutory limits and leave allocations. Components
// receive it by value at construction; nothing mutates it afterwards.
type Policy struct {
	// Statutory working-time limits (EU Working Time Directive defaults:
	// 48h/week, 11h rest).
	MaxWeeklyHours    decimal.Decimal
	MinDailyRestHours decimal.Decimal

	// Reporting.
	StandardDailyHours    decimal.Decimal
	AllowNegativeOvertime bool

	// Whole days allocated per leave type per calendar year.
	LeaveAllocations map[LeaveType]int

	// When true (the default), an approved manual interval may no longer
	// be edited or deleted by its owner; only an admin can touch it.
	LockApprovedIntervals bool
}

// DefaultPolicy returns the statutory defaults used when configuration
// leaves a field unset.
func DefaultPolicy() Policy {
	return Policy{
		MaxWeeklyHours:        decimal.NewFromInt(48),
		MinDailyRestHours:     decimal.NewFromInt(11),
		StandardDailyHours:    decimal.NewFromInt(8),
		AllowNegativeOvertime: false,
		LeaveAllocations: map[LeaveType]int{
			LeaveVacation:      25,
			LeaveSick:          10,
			LeaveSpecialPermit: 5,
		},
		LockApprovedIntervals: true,
	}
}

// Allocation returns the yearly allocation for a leave type (0 if the
// type has no configured allocation).
func (p Policy) Allocation(t LeaveType) int {
	return p.LeaveAllocations[t]
}

// =============================================================================
// COMPLIANCE VIOLATION - Derived, not persisted by the engine
// =============================================================================

type ViolationKind string

const (
	ViolationWeeklyHours ViolationKind = "weekly_hours"
	ViolationDailyRest   ViolationKind = "daily_rest"
)

// Violation is one detected breach of a statutory limit. Period is an
// ISO week key ("2025-W14") for weekly_hours or a date ("2025-04-07")
// for daily_rest.
type Violation struct {
	EmployeeID EmployeeID
	Kind       ViolationKind
	Period     string
	Measured   decimal.Decimal
	Limit      decimal.Decimal
}

// ComplianceReport lists the violations found in one evaluation, in
// chronological order.
type ComplianceReport struct {
	EmployeeID  EmployeeID
	PeriodStart time.Time
	PeriodEnd   time.Time
	Violations  []Violation
}

func (r ComplianceReport) Compliant() bool { return len(r.Violations) == 0 }

// =============================================================================
// BALANCE - Leave days per type per year
// =============================================================================

// LeaveBalance answers "how many days are left" for one employee, leave
// type and calendar year. Reserved (pending) days are surfaced but not
// subtracted from Remaining; callers decide whether to warn.
type LeaveBalance struct {
	EmployeeID EmployeeID
	Type       LeaveType
	Year       int
	Allocated  int
	Used       int
	Remaining  int
	Reserved   int
}

// =============================================================================
// HOURS - Decimal hour arithmetic
// =============================================================================

// HoursOf converts a duration to decimal hours.
func HoursOf(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d / time.Second)).Div(decimal.NewFromInt(3600))
}
