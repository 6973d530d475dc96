/*
balance.go - Leave-day balances per type per year

PURPOSE:
  Answers "how many days of this leave type are left this year?" from
  the employee's leave requests and the policy allocations.

CALCULATION:
  Allocated  policy allocation for the leave type and year
  Used       whole days (both endpoints inclusive) of approved requests,
             clipped to the calendar year
  Remaining  Allocated - Used
  Reserved   days of pending requests, clipped the same way; surfaced
             separately so callers can warn, never subtracted

A request spanning New Year contributes only its in-year days to each
year's balance.

SEE ALSO:
  - workflow.go: Calls Balance before committing an approval
*/
package engine

import "context"

// LeaveBalanceTracker is a pure read-side computation over the leave
// request store.
type LeaveBalanceTracker struct {
	store  LeaveStore
	policy Policy
}

func NewLeaveBalanceTracker(store LeaveStore, policy Policy) *LeaveBalanceTracker {
	return &LeaveBalanceTracker{store: store, policy: policy}
}

// Balance computes the employee's balance for one leave type and
// calendar year. An employee with no requests gets the full allocation.
func (t *LeaveBalanceTracker) Balance(ctx context.Context, employeeID EmployeeID, leaveType LeaveType, year int) (LeaveBalance, error) {
	if !leaveType.Valid() {
		return LeaveBalance{}, &ValidationError{Field: "type", Reason: "unknown leave type"}
	}

	requests, err := ReadRetry(ctx, func(ctx context.Context) ([]LeaveRequest, error) {
		return t.store.ListLeaveRequests(ctx, employeeID)
	})
	if err != nil {
		return LeaveBalance{}, err
	}

	used, reserved := 0, 0
	for _, lr := range requests {
		if lr.Type != leaveType {
			continue
		}
		days := OverlapDaysWithYear(lr.StartDate, lr.EndDate, year)
		if days == 0 {
			continue
		}
		switch lr.Status {
		case StatusApproved:
			used += days
		case StatusPending:
			reserved += days
		}
	}

	allocated := t.policy.Allocation(leaveType)
	return LeaveBalance{
		EmployeeID: employeeID,
		Type:       leaveType,
		Year:       year,
		Allocated:  allocated,
		Used:       used,
		Remaining:  allocated - used,
		Reserved:   reserved,
	}, nil
}
