package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempus/worktime-engine/engine"
	"github.com/tempus/worktime-engine/engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestBalance(t *testing.T) (*engine.LeaveBalanceTracker, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return engine.NewLeaveBalanceTracker(mem, engine.DefaultPolicy()), mem
}

func seedRequest(t *testing.T, mem *store.Memory, id string, leaveType engine.LeaveType, status engine.RequestStatus, from, to time.Time) {
	t.Helper()
	err := mem.CreateLeaveRequest(context.Background(), engine.LeaveRequest{
		ID:         engine.RequestID(id),
		EmployeeID: alice.ID,
		Type:       leaveType,
		StartDate:  from,
		EndDate:    to,
		Status:     status,
		CreatedAt:  from,
		UpdatedAt:  from,
	})
	require.NoError(t, err)
}

// =============================================================================
// BALANCE COMPUTATION
// =============================================================================

func TestBalance_NoRequests_FullAllocation(t *testing.T) {
	// GIVEN: No leave requests
	// WHEN: Asking for the vacation balance
	// THEN: The full policy allocation, nothing used or reserved

	tracker, _ := newTestBalance(t)

	bal, err := tracker.Balance(context.Background(), alice.ID, engine.LeaveVacation, 2025)
	require.NoError(t, err)
	assert.Equal(t, 25, bal.Allocated)
	assert.Equal(t, 0, bal.Used)
	assert.Equal(t, 25, bal.Remaining)
	assert.Equal(t, 0, bal.Reserved)
}

func TestBalance_OnlyApprovedCountsAsUsed(t *testing.T) {
	// GIVEN: One request per status, 5 days each
	// WHEN: Computing the balance
	// THEN: Approved counts as used, pending as reserved, rejected and
	//       canceled not at all

	tracker, mem := newTestBalance(t)

	seedRequest(t, mem, "r-appr", engine.LeaveVacation, engine.StatusApproved, day(time.March, 3), day(time.March, 7))
	seedRequest(t, mem, "r-pend", engine.LeaveVacation, engine.StatusPending, day(time.April, 7), day(time.April, 11))
	seedRequest(t, mem, "r-rej", engine.LeaveVacation, engine.StatusRejected, day(time.May, 5), day(time.May, 9))
	seedRequest(t, mem, "r-canc", engine.LeaveVacation, engine.StatusCanceled, day(time.June, 2), day(time.June, 6))

	bal, err := tracker.Balance(context.Background(), alice.ID, engine.LeaveVacation, 2025)
	require.NoError(t, err)
	assert.Equal(t, 5, bal.Used)
	assert.Equal(t, 20, bal.Remaining)
	assert.Equal(t, 5, bal.Reserved, "pending days are surfaced, not subtracted")
}

func TestBalance_TypesAreIndependent(t *testing.T) {
	// GIVEN: Approved sick leave
	// WHEN: Asking for the vacation balance
	// THEN: Untouched; each type has its own allocation

	tracker, mem := newTestBalance(t)

	seedRequest(t, mem, "r-sick", engine.LeaveSick, engine.StatusApproved, day(time.March, 3), day(time.March, 7))

	vac, err := tracker.Balance(context.Background(), alice.ID, engine.LeaveVacation, 2025)
	require.NoError(t, err)
	assert.Equal(t, 0, vac.Used)

	sick, err := tracker.Balance(context.Background(), alice.ID, engine.LeaveSick, 2025)
	require.NoError(t, err)
	assert.Equal(t, 5, sick.Used)
	assert.Equal(t, 10-5, sick.Remaining)
}

func TestBalance_YearSpanningRequestSplits(t *testing.T) {
	// GIVEN: An approved request Dec 29 2025 - Jan 2 2026
	// WHEN: Computing both years' balances
	// THEN: 3 days land in 2025, 2 in 2026

	tracker, mem := newTestBalance(t)

	seedRequest(t, mem, "r-ny", engine.LeaveVacation, engine.StatusApproved,
		time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC))

	y2025, err := tracker.Balance(context.Background(), alice.ID, engine.LeaveVacation, 2025)
	require.NoError(t, err)
	assert.Equal(t, 3, y2025.Used)

	y2026, err := tracker.Balance(context.Background(), alice.ID, engine.LeaveVacation, 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, y2026.Used)
}

func TestBalance_UnknownType(t *testing.T) {
	tracker, _ := newTestBalance(t)

	_, err := tracker.Balance(context.Background(), alice.ID, "sabbatical", 2025)
	assert.True(t, engine.IsValidation(err))
}

func TestBalance_RetriesTransientFailure(t *testing.T) {
	tracker, mem := newTestBalance(t)

	mem.FailNextReads(2)
	bal, err := tracker.Balance(context.Background(), alice.ID, engine.LeaveVacation, 2025)
	require.NoError(t, err)
	assert.Equal(t, 25, bal.Remaining)
}
