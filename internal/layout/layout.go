// Package layout computes vertical pixel positions for week-view events.
package layout

import (
	"time"

	"calwidget/internal/model"
	"calwidget/internal/query"
)

// Default layout metrics, matching a 64px-per-hour time grid.
const (
	DefaultRowHeightPx      = 64
	DefaultMinEventHeightPx = 24
	DefaultTopPaddingPx     = 2
	DefaultEventGapPx       = 4
)

// Metrics holds the pixel constants for time-slot layout.
type Metrics struct {
	// RowHeightPx is the rendered height of one hour row.
	RowHeightPx int
	// MinEventHeightPx is the floor applied to every event block, so
	// zero-duration or malformed ranges still render as a clickable block.
	MinEventHeightPx int
	// TopPaddingPx is added to every block's top offset.
	TopPaddingPx int
	// EventGapPx is subtracted from every block's height to leave a visual
	// gap between back-to-back events.
	EventGapPx int
}

// DefaultMetrics returns the standard layout constants.
func DefaultMetrics() Metrics {
	return Metrics{
		RowHeightPx:      DefaultRowHeightPx,
		MinEventHeightPx: DefaultMinEventHeightPx,
		TopPaddingPx:     DefaultTopPaddingPx,
		EventGapPx:       DefaultEventGapPx,
	}
}

// Normalize fills non-positive fields with defaults.
func (m *Metrics) Normalize() {
	if m.RowHeightPx <= 0 {
		m.RowHeightPx = DefaultRowHeightPx
	}
	if m.MinEventHeightPx <= 0 {
		m.MinEventHeightPx = DefaultMinEventHeightPx
	}
	if m.TopPaddingPx < 0 {
		m.TopPaddingPx = DefaultTopPaddingPx
	}
	if m.EventGapPx < 0 {
		m.EventGapPx = DefaultEventGapPx
	}
}

// Position lays out a single day's events vertically. dayEvents must
// already be filtered to one day; only the time-of-day of each start/end
// matters here.
//
// Height is clamped to MinEventHeightPx, so an event with end <= start
// degrades to a minimum-size block instead of producing a negative height.
// Overlapping events are not stacked horizontally; use HasOverlap to flag
// conflicts to the user instead.
func Position(dayEvents []model.Event, m Metrics) []model.PositionedEvent {
	m.Normalize()

	out := make([]model.PositionedEvent, 0, len(dayEvents))
	for _, ev := range dayEvents {
		top := hourFraction(ev.Start)*float64(m.RowHeightPx) + float64(m.TopPaddingPx)
		height := (hourFraction(ev.End)-hourFraction(ev.Start))*float64(m.RowHeightPx) - float64(m.EventGapPx)
		if height < float64(m.MinEventHeightPx) {
			height = float64(m.MinEventHeightPx)
		}
		out = append(out, model.PositionedEvent{
			Event:    ev,
			TopPx:    top,
			HeightPx: height,
		})
	}
	return out
}

// HasOverlap reports whether any two events in the list overlap in time.
// Events are sorted by start; an overlap exists when an earlier event's end
// is strictly after the next event's start.
func HasOverlap(events []model.Event) bool {
	sorted := query.SortByStart(events)
	for i := 0; i+1 < len(sorted); i++ {
		if sorted[i].End.After(sorted[i+1].Start) {
			return true
		}
	}
	return false
}

// hourFraction converts a timestamp's time-of-day into fractional hours,
// e.g. 12:30 -> 12.5.
func hourFraction(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60
}
