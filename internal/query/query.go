// Package query selects the events relevant to a given grid cell or range.
// All filters match on an event's start timestamp only: a multi-day event
// is assigned to its start date and is not split across cells.
package query

import (
	"sort"
	"time"

	"calwidget/internal/grid"
	"calwidget/internal/model"
)

// OnDate returns the events whose start falls on the same calendar day as
// date. Input order is preserved; no ordering is imposed here.
func OnDate(events []model.Event, date time.Time) []model.Event {
	out := make([]model.Event, 0)
	for _, ev := range events {
		if grid.SameDay(ev.Start, date) {
			out = append(out, ev)
		}
	}
	return out
}

// InWeek returns the events whose start falls within the week containing
// date, from the Sunday on/before it through the following Saturday.
func InWeek(events []model.Event, date time.Time) []model.Event {
	weekStart := grid.StartOfWeek(date)
	weekEnd := weekStart.AddDate(0, 0, 7)

	out := make([]model.Event, 0)
	for _, ev := range events {
		if !ev.Start.Before(weekStart) && ev.Start.Before(weekEnd) {
			out = append(out, ev)
		}
	}
	return out
}

// InMonth returns the events whose start falls within date's month.
func InMonth(events []model.Event, date time.Time) []model.Event {
	out := make([]model.Event, 0)
	for _, ev := range events {
		if ev.Start.Month() == date.Month() && ev.Start.Year() == date.Year() {
			out = append(out, ev)
		}
	}
	return out
}

// AtHour returns the events whose start falls within the given hour of day.
func AtHour(events []model.Event, hour int) []model.Event {
	out := make([]model.Event, 0)
	for _, ev := range events {
		if ev.Start.Hour() == hour {
			out = append(out, ev)
		}
	}
	return out
}

// SortByStart returns a new slice sorted ascending by start time. The sort
// is stable, so events sharing a start keep their relative order across
// repeated calls.
func SortByStart(events []model.Event) []model.Event {
	out := make([]model.Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

// GroupByDay buckets events by the calendar date of their start, keyed
// YYYY-MM-DD.
func GroupByDay(events []model.Event) map[string][]model.Event {
	grouped := make(map[string][]model.Event)
	for _, ev := range events {
		key := ev.Start.Format("2006-01-02")
		grouped[key] = append(grouped[key], ev)
	}
	return grouped
}
