package query

import (
	"reflect"
	"testing"
	"time"

	"calwidget/internal/model"
)

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.Local)
}

func TestOnDate(t *testing.T) {
	lunch := model.Event{
		ID:    "lunch",
		Title: "Lunch",
		Start: at(2025, time.January, 16, 12, 30),
		End:   at(2025, time.January, 16, 13, 30),
	}
	overnight := model.Event{
		ID:    "overnight",
		Title: "Overnight",
		Start: at(2025, time.January, 15, 22, 0),
		End:   at(2025, time.January, 16, 6, 0),
	}
	events := []model.Event{lunch, overnight}

	tests := []struct {
		name    string
		date    time.Time
		wantIDs []string
	}{
		{"matching day", at(2025, time.January, 16, 0, 0), []string{"lunch"}},
		// Assignment is by start date only; the overnight event shows up on
		// the 15th even though it ends on the 16th.
		{"start date wins", at(2025, time.January, 15, 9, 0), []string{"overnight"}},
		{"empty day", at(2025, time.January, 17, 0, 0), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(OnDate(events, tt.date))
			if !reflect.DeepEqual(got, tt.wantIDs) {
				t.Errorf("OnDate = %v, want %v", got, tt.wantIDs)
			}
		})
	}
}

func TestInWeek(t *testing.T) {
	// Week of 2025-01-15: Sunday 2025-01-12 through Saturday 2025-01-18.
	events := []model.Event{
		{ID: "before", Start: at(2025, time.January, 11, 23, 59)},
		{ID: "sunday-midnight", Start: at(2025, time.January, 12, 0, 0)},
		{ID: "midweek", Start: at(2025, time.January, 15, 12, 0)},
		{ID: "saturday-night", Start: at(2025, time.January, 18, 23, 59)},
		{ID: "after", Start: at(2025, time.January, 19, 0, 0)},
	}

	got := ids(InWeek(events, at(2025, time.January, 15, 10, 0)))
	want := []string{"sunday-midnight", "midweek", "saturday-night"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("InWeek = %v, want %v", got, want)
	}
}

func TestInMonth(t *testing.T) {
	events := []model.Event{
		{ID: "jan", Start: at(2025, time.January, 31, 10, 0)},
		{ID: "feb", Start: at(2025, time.February, 1, 10, 0)},
		{ID: "jan-prev-year", Start: at(2024, time.January, 15, 10, 0)},
	}

	got := ids(InMonth(events, at(2025, time.January, 1, 0, 0)))
	if want := []string{"jan"}; !reflect.DeepEqual(got, want) {
		t.Errorf("InMonth = %v, want %v", got, want)
	}
}

func TestAtHour(t *testing.T) {
	events := []model.Event{
		{ID: "nine", Start: at(2025, time.January, 16, 9, 0)},
		{ID: "nine-thirty", Start: at(2025, time.January, 16, 9, 30)},
		{ID: "ten", Start: at(2025, time.January, 16, 10, 0)},
	}

	got := ids(AtHour(events, 9))
	if want := []string{"nine", "nine-thirty"}; !reflect.DeepEqual(got, want) {
		t.Errorf("AtHour = %v, want %v", got, want)
	}
}

func TestSortByStartStable(t *testing.T) {
	shared := at(2025, time.January, 16, 9, 0)
	events := []model.Event{
		{ID: "late", Start: at(2025, time.January, 16, 15, 0)},
		{ID: "tie-a", Start: shared},
		{ID: "tie-b", Start: shared},
		{ID: "early", Start: at(2025, time.January, 16, 8, 0)},
	}

	want := []string{"early", "tie-a", "tie-b", "late"}
	for i := 0; i < 3; i++ {
		got := ids(SortByStart(events))
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("run %d: SortByStart = %v, want %v", i, got, want)
		}
	}

	// The input slice must not be reordered.
	if events[0].ID != "late" {
		t.Error("SortByStart mutated its input")
	}
}

func TestGroupByDay(t *testing.T) {
	events := []model.Event{
		{ID: "a", Start: at(2025, time.January, 16, 9, 0)},
		{ID: "b", Start: at(2025, time.January, 16, 14, 0)},
		{ID: "c", Start: at(2025, time.January, 17, 9, 0)},
	}

	grouped := GroupByDay(events)
	if len(grouped) != 2 {
		t.Fatalf("got %d groups, want 2", len(grouped))
	}
	if got := ids(grouped["2025-01-16"]); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("2025-01-16 group = %v", got)
	}
	if got := ids(grouped["2025-01-17"]); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("2025-01-17 group = %v", got)
	}
}

func ids(events []model.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.ID)
	}
	return out
}
