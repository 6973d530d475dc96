package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tempus/worktime-engine/engine"
)

func TestCalendar_DaysInclusive(t *testing.T) {
	assert.Equal(t, 1, engine.DaysInclusive(day(time.July, 7), day(time.July, 7)))
	assert.Equal(t, 5, engine.DaysInclusive(day(time.July, 7), day(time.July, 11)))
	assert.Equal(t, 0, engine.DaysInclusive(day(time.July, 8), day(time.July, 7)))

	// Time-of-day is ignored; only the calendar day counts.
	assert.Equal(t, 2, engine.DaysInclusive(
		time.Date(2025, time.July, 7, 23, 0, 0, 0, time.UTC),
		time.Date(2025, time.July, 8, 1, 0, 0, 0, time.UTC)))
}

func TestCalendar_ISOWeekKey(t *testing.T) {
	// A plain mid-year week.
	assert.Equal(t, "2025-W11", engine.ISOWeekKey(march(10, 12)))

	// Around New Year the ISO year differs from the calendar year:
	// Dec 30 2024 belongs to 2025-W01, Jan 1 2027 to 2026-W53.
	assert.Equal(t, "2025-W01", engine.ISOWeekKey(time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-W53", engine.ISOWeekKey(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC)))
}

func TestCalendar_OverlapDaysWithYear(t *testing.T) {
	dec29 := time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC)
	jan2 := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 3, engine.OverlapDaysWithYear(dec29, jan2, 2025))
	assert.Equal(t, 2, engine.OverlapDaysWithYear(dec29, jan2, 2026))
	assert.Equal(t, 0, engine.OverlapDaysWithYear(dec29, jan2, 2027))
}

func TestCalendar_SplitByDay(t *testing.T) {
	// 22:00 Monday to 02:00 Wednesday: three pieces.
	type piece struct {
		day        string
		start, end int // hours
	}
	var got []piece
	engine.SplitByDay(march(10, 22), march(12, 2), func(day, s, e time.Time) {
		got = append(got, piece{day.Format("2006-01-02"), s.Hour(), e.Hour()})
	})

	assert.Equal(t, []piece{
		{"2025-03-10", 22, 0},
		{"2025-03-11", 0, 0},
		{"2025-03-12", 0, 2},
	}, got)

	// A piece entirely inside one day stays whole.
	got = nil
	engine.SplitByDay(march(10, 9), march(10, 17), func(day, s, e time.Time) {
		got = append(got, piece{day.Format("2006-01-02"), s.Hour(), e.Hour()})
	})
	assert.Equal(t, []piece{{"2025-03-10", 9, 17}}, got)
}

func TestCalendar_WorkingDays(t *testing.T) {
	// Monday through Sunday: 5 business days.
	assert.Equal(t, 5, engine.WorkingDays(march(10, 0), march(16, 0)))
	// Saturday and Sunday only.
	assert.Equal(t, 0, engine.WorkingDays(march(15, 0), march(16, 0)))
	// Single weekday.
	assert.Equal(t, 1, engine.WorkingDays(march(12, 0), march(12, 0)))
}

func TestCalendar_ClipRange(t *testing.T) {
	s, e, ok := engine.ClipRange(march(10, 8), march(10, 20), march(10, 9), march(10, 17))
	assert.True(t, ok)
	assert.Equal(t, march(10, 9), s)
	assert.Equal(t, march(10, 17), e)

	_, _, ok = engine.ClipRange(march(10, 8), march(10, 9), march(10, 9), march(10, 17))
	assert.False(t, ok, "back-to-back ranges do not intersect")
}
