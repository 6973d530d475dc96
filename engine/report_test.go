package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempus/worktime-engine/engine"
	"github.com/tempus/worktime-engine/engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestReporter(t *testing.T) (*engine.AggregationReporter, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return engine.NewAggregationReporter(mem, engine.DefaultPolicy()), mem
}

// =============================================================================
// DAILY TOTALS
// =============================================================================

func TestReporter_DailyTotals_PerDayBuckets(t *testing.T) {
	// GIVEN: Two entries Monday, one Tuesday
	// WHEN: Summing per day
	// THEN: Hours and entry counts bucket by calendar day; empty days are
	//       absent

	rep, mem := newTestReporter(t)
	seedClosed(t, mem, "iv-1", march(10, 9), march(10, 12))  // 3h
	seedClosed(t, mem, "iv-2", march(10, 13), march(10, 18)) // 5h
	seedClosed(t, mem, "iv-3", march(11, 9), march(11, 17))  // 8h

	totals, err := rep.DailyTotals(context.Background(), alice.ID, march(10, 0), march(17, 0))
	require.NoError(t, err)
	require.Len(t, totals, 2)

	mon := totals["2025-03-10"]
	assert.Equal(t, "8", mon.Hours.String())
	assert.Equal(t, 2, mon.Entries)

	tue := totals["2025-03-11"]
	assert.Equal(t, "8", tue.Hours.String())
	assert.Equal(t, 1, tue.Entries)
}

func TestReporter_DailyTotals_MidnightSpanSplitsHoursNotEntries(t *testing.T) {
	// GIVEN: A shift from Monday 22:00 to Tuesday 02:00
	// WHEN: Summing per day
	// THEN: 2h on each day, but the entry counts once, on its start day

	rep, mem := newTestReporter(t)
	seedClosed(t, mem, "iv-night", march(10, 22), march(11, 2))

	totals, err := rep.DailyTotals(context.Background(), alice.ID, march(10, 0), march(12, 0))
	require.NoError(t, err)

	assert.Equal(t, "2", totals["2025-03-10"].Hours.String())
	assert.Equal(t, 1, totals["2025-03-10"].Entries)
	assert.Equal(t, "2", totals["2025-03-11"].Hours.String())
	assert.Equal(t, 0, totals["2025-03-11"].Entries)
}

func TestReporter_DailyTotals_FractionalHours(t *testing.T) {
	// GIVEN: A 90-minute entry
	// WHEN: Summing
	// THEN: Exactly 1.5 hours, no float drift

	rep, mem := newTestReporter(t)
	seedClosed(t, mem, "iv-1", march(10, 9), march(10, 9).Add(90*time.Minute))

	totals, err := rep.DailyTotals(context.Background(), alice.ID, march(10, 0), march(11, 0))
	require.NoError(t, err)
	assert.True(t, totals["2025-03-10"].Hours.Equal(decimal.RequireFromString("1.5")))
}

// =============================================================================
// OVERTIME
// =============================================================================

func TestReporter_Overtime_AboveStandard(t *testing.T) {
	// GIVEN: Five 10-hour weekdays (50h) against 5 x 8h standard
	// WHEN: Computing overtime for that week
	// THEN: 10 hours over

	rep, mem := newTestReporter(t)
	for d := 10; d <= 14; d++ {
		seedClosed(t, mem, "iv-"+string(rune('a'+d)), march(d, 8), march(d, 18))
	}

	// Monday 00:00 through next Monday 00:00: 5 working days.
	sum, err := rep.Overtime(context.Background(), alice.ID, march(10, 0), march(17, 0))
	require.NoError(t, err)
	assert.Equal(t, 5, sum.WorkingDays)
	assert.Equal(t, "40", sum.StandardHours.String())
	assert.Equal(t, "50", sum.TotalHours.String())
	assert.Equal(t, "10", sum.Overtime.String())
}

func TestReporter_Overtime_FlooredAtZero(t *testing.T) {
	// GIVEN: 8 worked hours against a 40h standard week
	// WHEN: Computing overtime
	// THEN: Zero, not negative (default policy)

	rep, mem := newTestReporter(t)
	seedClosed(t, mem, "iv-1", march(10, 9), march(10, 17))

	sum, err := rep.Overtime(context.Background(), alice.ID, march(10, 0), march(17, 0))
	require.NoError(t, err)
	assert.Equal(t, "8", sum.TotalHours.String())
	assert.True(t, sum.Overtime.IsZero())
}

func TestReporter_Overtime_NegativeWhenPolicyAllows(t *testing.T) {
	// GIVEN: The same deficit with AllowNegativeOvertime
	// WHEN: Computing overtime
	// THEN: The deficit is reported

	mem := store.NewMemory()
	policy := engine.DefaultPolicy()
	policy.AllowNegativeOvertime = true
	rep := engine.NewAggregationReporter(mem, policy)

	seedClosed(t, mem, "iv-1", march(10, 9), march(10, 17))

	sum, err := rep.Overtime(context.Background(), alice.ID, march(10, 0), march(17, 0))
	require.NoError(t, err)
	assert.Equal(t, "-32", sum.Overtime.String())
}

func TestReporter_Overtime_WeekendNotStandard(t *testing.T) {
	// GIVEN: 6 hours worked on a Saturday
	// WHEN: Computing overtime for just that weekend
	// THEN: Zero working days, so all worked hours are overtime

	rep, mem := newTestReporter(t)
	seedClosed(t, mem, "iv-sat", march(15, 9), march(15, 15))

	sum, err := rep.Overtime(context.Background(), alice.ID, march(15, 0), march(17, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, sum.WorkingDays)
	assert.Equal(t, "6", sum.Overtime.String())
}

func TestReporter_InvalidPeriod(t *testing.T) {
	rep, _ := newTestReporter(t)
	ctx := context.Background()

	_, err := rep.DailyTotals(ctx, alice.ID, march(17, 0), march(10, 0))
	assert.True(t, engine.IsValidation(err))

	_, err = rep.Overtime(ctx, alice.ID, march(10, 0), march(10, 0))
	assert.True(t, engine.IsValidation(err))
}
