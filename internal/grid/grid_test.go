package grid

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestMonthGridJanuary2025(t *testing.T) {
	// Reference 2025-01-15 (a Wednesday): the grid must run from Sunday
	// 2024-12-29 through Saturday 2025-02-08.
	today := date(2025, time.January, 15)
	cells := MonthGrid(today, today)

	if len(cells) != MonthGridSize {
		t.Fatalf("got %d cells, want %d", len(cells), MonthGridSize)
	}
	if got, want := cells[0].Date, date(2024, time.December, 29); !got.Equal(want) {
		t.Errorf("first cell = %v, want %v", got, want)
	}
	if got, want := cells[41].Date, date(2025, time.February, 8); !got.Equal(want) {
		t.Errorf("last cell = %v, want %v", got, want)
	}
	if cells[0].InMonth {
		t.Error("2024-12-29 should be flagged out-of-month")
	}
	if !cells[3].InMonth {
		t.Error("2025-01-01 should be flagged in-month")
	}

	var todays int
	for _, c := range cells {
		if c.Today {
			todays++
			if !SameDay(c.Date, today) {
				t.Errorf("today flag on wrong cell: %v", c.Date)
			}
		}
	}
	if todays != 1 {
		t.Errorf("got %d today cells, want 1", todays)
	}
}

func TestMonthGridProperties(t *testing.T) {
	refs := []time.Time{
		date(2025, time.January, 1),
		date(2025, time.January, 31),
		date(2024, time.February, 29), // leap February
		date(2025, time.June, 15),     // month starting on a Sunday
		date(2025, time.December, 31),
	}
	today := date(2025, time.March, 3)

	for _, ref := range refs {
		t.Run(ref.Format("2006-01"), func(t *testing.T) {
			cells := MonthGrid(ref, today)

			if len(cells) != 42 {
				t.Fatalf("got %d cells, want 42", len(cells))
			}
			if wd := cells[0].Date.Weekday(); wd != time.Sunday {
				t.Errorf("first cell weekday = %v, want Sunday", wd)
			}
			for i := 1; i < len(cells); i++ {
				if got, want := cells[i].Date, cells[i-1].Date.AddDate(0, 0, 1); !got.Equal(want) {
					t.Fatalf("cell %d = %v, not consecutive after %v", i, got, cells[i-1].Date)
				}
			}
			// The middle of the grid always lands inside the target month.
			if mid := cells[15]; !mid.InMonth {
				t.Errorf("cell 15 (%v) not in target month %v", mid.Date, ref.Month())
			}

			var inMonth int
			for _, c := range cells {
				if c.InMonth {
					inMonth++
				}
			}
			want := daysIn(ref)
			if inMonth != want {
				t.Errorf("got %d in-month cells, want %d", inMonth, want)
			}
		})
	}
}

func daysIn(ref time.Time) int {
	first := date(ref.Year(), ref.Month(), 1)
	return first.AddDate(0, 1, -1).Day()
}

func TestWeekGrid(t *testing.T) {
	tests := []struct {
		name      string
		ref       time.Time
		wantStart time.Time
	}{
		{"midweek", date(2025, time.January, 15), date(2025, time.January, 12)},
		{"sunday is its own start", date(2025, time.June, 1), date(2025, time.June, 1)},
		{"saturday", date(2025, time.February, 8), date(2025, time.February, 2)},
		{"year boundary", date(2025, time.January, 1), date(2024, time.December, 29)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := WeekGrid(tt.ref)

			if len(days) != 7 {
				t.Fatalf("got %d days, want 7", len(days))
			}
			if !days[0].Equal(tt.wantStart) {
				t.Errorf("week start = %v, want %v", days[0], tt.wantStart)
			}
			if wd := days[0].Weekday(); wd != time.Sunday {
				t.Errorf("week start weekday = %v, want Sunday", wd)
			}

			var containsRef bool
			for i, d := range days {
				if i > 0 && !d.Equal(days[i-1].AddDate(0, 0, 1)) {
					t.Fatalf("day %d = %v, not consecutive", i, d)
				}
				if SameDay(d, tt.ref) {
					containsRef = true
				}
			}
			if !containsRef {
				t.Errorf("week %v does not contain reference %v", days, tt.ref)
			}
		})
	}
}

func TestHours(t *testing.T) {
	hours := Hours()
	if len(hours) != 24 {
		t.Fatalf("got %d hour markers, want 24", len(hours))
	}
	if hours[0] != "00:00" || hours[12] != "12:00" || hours[23] != "23:00" {
		t.Errorf("unexpected hour markers: first=%q mid=%q last=%q", hours[0], hours[12], hours[23])
	}
}

func TestSameDayIgnoresTimeOfDay(t *testing.T) {
	a := time.Date(2025, time.January, 16, 0, 0, 1, 0, time.Local)
	b := time.Date(2025, time.January, 16, 23, 59, 59, 0, time.Local)
	if !SameDay(a, b) {
		t.Error("same calendar day with different times should match")
	}
	if SameDay(a, b.AddDate(0, 0, 1)) {
		t.Error("different calendar days should not match")
	}
}
