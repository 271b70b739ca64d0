package grid

import (
	"fmt"
	"time"

	"calwidget/internal/model"
)

// MonthGridSize is the fixed cell count of a month grid: 6 weeks x 7 days.
// The grid geometry never varies with the month's actual length.
const MonthGridSize = 42

// MonthGrid builds the 42-cell month grid anchored on ref's month.
//
// The grid starts on the Sunday on/before the first of the month and runs
// for 42 consecutive days, so leading/trailing out-of-month dates are
// included as first-class cells (InMonth=false). today is injected rather
// than read from the wall clock so the function stays pure.
func MonthGrid(ref, today time.Time) []model.DayCell {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	start := first.AddDate(0, 0, -int(first.Weekday()))

	cells := make([]model.DayCell, 0, MonthGridSize)
	for i := 0; i < MonthGridSize; i++ {
		d := start.AddDate(0, 0, i)
		cells = append(cells, model.DayCell{
			Date:    d,
			InMonth: d.Month() == ref.Month() && d.Year() == ref.Year(),
			Today:   SameDay(d, today),
		})
	}
	return cells
}

// WeekGrid returns the 7 consecutive days of ref's week, starting on the
// Sunday on/before ref. Each day is normalized to midnight.
func WeekGrid(ref time.Time) []time.Time {
	start := StartOfWeek(ref)
	days := make([]time.Time, 0, 7)
	for i := 0; i < 7; i++ {
		days = append(days, start.AddDate(0, 0, i))
	}
	return days
}

// Hours returns the fixed hour markers shared by all week-view columns,
// "00:00" through "23:00".
func Hours() []string {
	out := make([]string, 24)
	for i := range out {
		out[i] = fmt.Sprintf("%02d:00", i)
	}
	return out
}

// StartOfWeek returns midnight of the Sunday on/before t.
func StartOfWeek(t time.Time) time.Time {
	return Midnight(t).AddDate(0, 0, -int(t.Weekday()))
}

// Midnight truncates t to the start of its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b share the same calendar date. Comparison
// is by the year/month/day triple, not by absolute time, so time-of-day is
// irrelevant.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
