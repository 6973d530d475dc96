/*
report.go - Daily totals and overtime aggregation

PURPOSE:
  Read-only, side-effect-free summaries over ledger snapshots, consumed
  by dashboards and reports. Open intervals are excluded; only closed
  work counts.

SEE ALSO:
  - compliance.go: The statutory checks over the same snapshots
  - calendar.go: Per-day clipping and business-day counting
*/
package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// DayTotal is one calendar day's aggregate.
type DayTotal struct {
	Hours   decimal.Decimal
	Entries int
}

// OvertimeSummary carries the inputs alongside the result so reports
// can show their work.
type OvertimeSummary struct {
	EmployeeID    EmployeeID
	TotalHours    decimal.Decimal
	WorkingDays   int
	StandardHours decimal.Decimal
	Overtime      decimal.Decimal
}

// AggregationReporter produces report-ready summaries from ledger data.
type AggregationReporter struct {
	store  IntervalStore
	policy Policy
}

func NewAggregationReporter(store IntervalStore, policy Policy) *AggregationReporter {
	return &AggregationReporter{store: store, policy: policy}
}

// DailyTotals sums clipped interval hours per calendar day over
// [from, to). Days without work are absent from the map. Keys are
// "2006-01-02" dates.
func (r *AggregationReporter) DailyTotals(ctx context.Context, employeeID EmployeeID, from, to time.Time) (map[string]DayTotal, error) {
	spans, err := r.clippedSpans(ctx, employeeID, from, to)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]DayTotal)
	for _, sp := range spans {
		counted := false
		SplitByDay(sp.start, sp.end, func(day time.Time, pieceStart, pieceEnd time.Time) {
			key := day.Format("2006-01-02")
			dt := totals[key]
			dt.Hours = dt.Hours.Add(HoursOf(pieceEnd.Sub(pieceStart)))
			// An interval spanning midnight counts as one entry, on the
			// day it started.
			if !counted {
				dt.Entries++
				counted = true
			}
			totals[key] = dt
		})
	}
	return totals, nil
}

// Overtime computes worked hours minus the standard expectation
// (business days in the period times StandardDailyHours). The result is
// floored at zero unless the policy allows negative overtime.
func (r *AggregationReporter) Overtime(ctx context.Context, employeeID EmployeeID, from, to time.Time) (OvertimeSummary, error) {
	spans, err := r.clippedSpans(ctx, employeeID, from, to)
	if err != nil {
		return OvertimeSummary{}, err
	}

	total := decimal.Zero
	for _, sp := range spans {
		total = total.Add(HoursOf(sp.end.Sub(sp.start)))
	}

	// The period is half-open; the last counted day is the one before
	// `to` when `to` sits on midnight.
	lastDay := to.Add(-time.Nanosecond)
	workingDays := WorkingDays(from, lastDay)
	standard := decimal.NewFromInt(int64(workingDays)).Mul(r.policy.StandardDailyHours)

	overtime := total.Sub(standard)
	if overtime.IsNegative() && !r.policy.AllowNegativeOvertime {
		overtime = decimal.Zero
	}

	return OvertimeSummary{
		EmployeeID:    employeeID,
		TotalHours:    total,
		WorkingDays:   workingDays,
		StandardHours: standard,
		Overtime:      overtime,
	}, nil
}

func (r *AggregationReporter) clippedSpans(ctx context.Context, employeeID EmployeeID, from, to time.Time) ([]span, error) {
	from, to = from.UTC(), to.UTC()
	if !to.After(from) {
		return nil, &ValidationError{Field: "to", Reason: "period end must be after period start"}
	}
	intervals, err := ReadRetry(ctx, func(ctx context.Context) ([]Interval, error) {
		return r.store.ListIntervals(ctx, employeeID, from, to)
	})
	if err != nil {
		return nil, err
	}
	return clipClosed(intervals, from, to), nil
}
