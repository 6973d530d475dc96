/*
calendar.go - Date arithmetic shared by balances, compliance and reports

PURPOSE:
  Small, deliberately boring helpers for the temporal algorithms:
  day truncation, inclusive day counts, ISO week bucketing, calendar-day
  splitting of intervals, and business-day counting.

CONVENTIONS:
  - All dates are handled in UTC.
  - Leave requests are day-granular: both endpoints inclusive.
  - ISO weeks are Monday-start, Thursday-anchored (time.Time.ISOWeek).

SEE ALSO:
  - compliance.go: ISO week bucketing, rest gaps
  - report.go: Per-day clipping, business days
  - balance.go: Year intersection of leave ranges
*/
package engine

import (
	"fmt"
	"time"
)

// DayOf truncates a timestamp to UTC midnight.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInclusive counts whole days from a to b, both endpoints counted.
// Returns 0 if b's day is before a's day.
func DaysInclusive(a, b time.Time) int {
	da, db := DayOf(a), DayOf(b)
	if db.Before(da) {
		return 0
	}
	return int(db.Sub(da).Hours()/24) + 1
}

// ISOWeekKey returns the ISO-8601 week bucket for a timestamp, e.g.
// "2025-W14". The ISO year can differ from the calendar year around
// January 1st; ISOWeek handles that.
func ISOWeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// YearBounds returns the first and last day of a calendar year.
func YearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return start, end
}

// OverlapDaysWithYear counts the whole days of [start, end] (inclusive)
// that fall inside the given calendar year.
func OverlapDaysWithYear(start, end time.Time, year int) int {
	ys, ye := YearBounds(year)
	s, e := DayOf(start), DayOf(end)
	if s.Before(ys) {
		s = ys
	}
	if e.After(ye) {
		e = ye
	}
	if e.Before(s) {
		return 0
	}
	return DaysInclusive(s, e)
}

// ClipRange intersects [s, e) with [from, to). Returns ok=false when the
// ranges do not intersect.
func ClipRange(s, e, from, to time.Time) (time.Time, time.Time, bool) {
	if s.Before(from) {
		s = from
	}
	if e.After(to) {
		e = to
	}
	if !s.Before(e) {
		return time.Time{}, time.Time{}, false
	}
	return s, e, true
}

// SplitByDay cuts [s, e) at UTC midnights and calls fn with each
// day-local piece. Used for daily totals and weekly bucketing of
// intervals that span midnight.
func SplitByDay(s, e time.Time, fn func(day time.Time, pieceStart, pieceEnd time.Time)) {
	cur := s
	for cur.Before(e) {
		day := DayOf(cur)
		next := day.AddDate(0, 0, 1)
		pieceEnd := e
		if next.Before(e) {
			pieceEnd = next
		}
		fn(day, cur, pieceEnd)
		cur = next
	}
}

// WorkingDays counts Monday–Friday days in [from, to] inclusive.
func WorkingDays(from, to time.Time) int {
	count := 0
	for d := DayOf(from); !d.After(DayOf(to)); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}
