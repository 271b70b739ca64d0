package model

import "time"

// DefaultEventColor is the fallback color applied when an event is created
// or saved without one. Every color-optional path goes through this single
// constant rather than ad-hoc inline fallbacks.
const DefaultEventColor = "#0ea5e9"

// ViewMode selects which grid the widget is currently showing.
type ViewMode string

const (
	ViewMonth ViewMode = "month"
	ViewWeek  ViewMode = "week"
)

// Valid reports whether m is one of the known view modes.
func (m ViewMode) Valid() bool {
	return m == ViewMonth || m == ViewWeek
}

// Toggle returns the other view mode.
func (m ViewMode) Toggle() ViewMode {
	if m == ViewMonth {
		return ViewWeek
	}
	return ViewMonth
}

// Event is a single calendar entry. All times are local wall-clock values;
// the widget intentionally carries no timezone normalization.
//
// End >= Start is expected but not enforced anywhere in the core: layout
// degrades to a minimum-size block instead of failing on a malformed range.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
}

// ColorOrDefault returns the event's color, falling back to DefaultEventColor.
func (e Event) ColorOrDefault() string {
	if e.Color == "" {
		return DefaultEventColor
	}
	return e.Color
}

// EventPatch is a typed partial update for an Event. Nil fields are left
// untouched by Apply, so the zero patch is an identity.
type EventPatch struct {
	Title       *string    `json:"title,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	Description *string    `json:"description,omitempty"`
	Color       *string    `json:"color,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p EventPatch) IsZero() bool {
	return p.Title == nil && p.Start == nil && p.End == nil &&
		p.Description == nil && p.Color == nil
}

// Apply merges the patch into ev and returns the result. The input event is
// passed by value and never mutated in place.
func (p EventPatch) Apply(ev Event) Event {
	if p.Title != nil {
		ev.Title = *p.Title
	}
	if p.Start != nil {
		ev.Start = *p.Start
	}
	if p.End != nil {
		ev.End = *p.End
	}
	if p.Description != nil {
		ev.Description = *p.Description
	}
	if p.Color != nil {
		ev.Color = *p.Color
	}
	return ev
}

// DayCell is one cell of the 6x7 month grid. Cells are recomputed on every
// render pass and never stored.
type DayCell struct {
	Date    time.Time `json:"date"`
	InMonth bool      `json:"in_month"`
	Today   bool      `json:"today"`
}

// PositionedEvent is an event annotated with its computed vertical pixel
// position for week-view rendering. Derived per render, not stored.
type PositionedEvent struct {
	Event    Event   `json:"event"`
	TopPx    float64 `json:"top_px"`
	HeightPx float64 `json:"height_px"`
}
