/*
compliance.go - Statutory working-time evaluation

PURPOSE:
  Evaluates an employee's closed intervals over a period against the
  configured limits and produces a violation report:

    weekly_hours  total clipped hours in an ISO week > MaxWeeklyHours
    daily_rest    gap between consecutive intervals < MinDailyRestHours

ALGORITHM:
  1. Fetch closed intervals intersecting [from, to), clip each to the
     period, sort by start (ties broken by id).
  2. Split clipped spans at UTC midnights and bucket the hours by ISO
     week (Monday-start, Thursday-anchored). Each week over the cap
     yields one weekly_hours violation carrying the measured total.
  3. Walk consecutive pairs of the sorted list; a gap below the minimum
     rest yields one daily_rest violation attributed to the day the
     earlier interval ended. Same-day pairs count: a 17:00 stop followed
     by a 23:00 restart is a short rest like any other.

  An empty interval set produces an empty report, not an error.

SEE ALSO:
  - calendar.go: ISO week keys, midnight splitting
  - report.go: The non-statutory aggregations
*/
package engine

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ViolationCounter is notified once per detected violation. Satisfied by
// metrics.Collector.
type ViolationCounter interface {
	RecordViolation(kind string)
}

type nopViolationCounter struct{}

func (nopViolationCounter) RecordViolation(kind string) {}

// ComplianceEvaluator is a pure read-side computation over ledger
// snapshots.
type ComplianceEvaluator struct {
	store      IntervalStore
	policy     Policy
	violations ViolationCounter
}

func NewComplianceEvaluator(store IntervalStore, policy Policy, violations ViolationCounter) *ComplianceEvaluator {
	if violations == nil {
		violations = nopViolationCounter{}
	}
	return &ComplianceEvaluator{store: store, policy: policy, violations: violations}
}

// Evaluate computes the employee's compliance report for [from, to).
func (c *ComplianceEvaluator) Evaluate(ctx context.Context, employeeID EmployeeID, from, to time.Time) (ComplianceReport, error) {
	from, to = from.UTC(), to.UTC()
	if !to.After(from) {
		return ComplianceReport{}, &ValidationError{Field: "to", Reason: "period end must be after period start"}
	}

	intervals, err := ReadRetry(ctx, func(ctx context.Context) ([]Interval, error) {
		return c.store.ListIntervals(ctx, employeeID, from, to)
	})
	if err != nil {
		return ComplianceReport{}, err
	}

	spans := clipClosed(intervals, from, to)

	report := ComplianceReport{
		EmployeeID:  employeeID,
		PeriodStart: from,
		PeriodEnd:   to,
	}
	report.Violations = append(report.Violations, c.weeklyHours(employeeID, spans)...)
	report.Violations = append(report.Violations, c.dailyRest(employeeID, spans)...)

	for _, v := range report.Violations {
		c.violations.RecordViolation(string(v.Kind))
	}
	return report, nil
}

// span is a closed, clipped slice of worked time.
type span struct {
	id    IntervalID
	start time.Time
	end   time.Time
}

// clipClosed drops open intervals, clips the rest to [from, to) and
// sorts chronologically with id as the deterministic tiebreak.
func clipClosed(intervals []Interval, from, to time.Time) []span {
	spans := make([]span, 0, len(intervals))
	for _, iv := range intervals {
		if iv.End == nil {
			continue
		}
		s, e, ok := ClipRange(iv.Start, *iv.End, from, to)
		if !ok {
			continue
		}
		spans = append(spans, span{id: iv.ID, start: s, end: e})
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start.Equal(spans[j].start) {
			return spans[i].id < spans[j].id
		}
		return spans[i].start.Before(spans[j].start)
	})
	return spans
}

// weeklyHours buckets worked hours by ISO week. A single long interval
// contributes per-week pieces, so it can trip the cap on its own.
func (c *ComplianceEvaluator) weeklyHours(employeeID EmployeeID, spans []span) []Violation {
	totals := make(map[string]decimal.Decimal)
	weekStart := make(map[string]time.Time)

	for _, sp := range spans {
		SplitByDay(sp.start, sp.end, func(day time.Time, pieceStart, pieceEnd time.Time) {
			key := ISOWeekKey(day)
			totals[key] = totals[key].Add(HoursOf(pieceEnd.Sub(pieceStart)))
			if cur, ok := weekStart[key]; !ok || day.Before(cur) {
				weekStart[key] = day
			}
		})
	}

	keys := make([]string, 0, len(totals))
	for key := range totals {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return weekStart[keys[i]].Before(weekStart[keys[j]]) })

	var out []Violation
	for _, key := range keys {
		if totals[key].GreaterThan(c.policy.MaxWeeklyHours) {
			out = append(out, Violation{
				EmployeeID: employeeID,
				Kind:       ViolationWeeklyHours,
				Period:     key,
				Measured:   totals[key],
				Limit:      c.policy.MaxWeeklyHours,
			})
		}
	}
	return out
}

// dailyRest checks the gap between every consecutive pair of spans. The
// violation is attributed to the day the earlier interval ended.
func (c *ComplianceEvaluator) dailyRest(employeeID EmployeeID, spans []span) []Violation {
	var out []Violation
	for i := 0; i+1 < len(spans); i++ {
		gap := HoursOf(spans[i+1].start.Sub(spans[i].end))
		if gap.LessThan(c.policy.MinDailyRestHours) {
			out = append(out, Violation{
				EmployeeID: employeeID,
				Kind:       ViolationDailyRest,
				Period:     DayOf(spans[i].end).Format("2006-01-02"),
				Measured:   gap,
				Limit:      c.policy.MinDailyRestHours,
			})
		}
	}
	return out
}
