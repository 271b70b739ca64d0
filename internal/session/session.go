// Package session tracks the navigation state of one widget session: the
// reference date anchoring the displayed grid and the active view mode.
package session

import (
	"time"

	"calwidget/internal/model"
)

// Session is the navigation state machine. One instance exists per widget
// session, owned by the host; there are no package-level singletons. All
// transitions are total functions with no error states, and the machine is
// live for the whole session.
type Session struct {
	// Reference is the date anchoring the currently displayed grid.
	Reference time.Time
	// View is the active view mode.
	View model.ViewMode

	now func() time.Time
}

// Option configures a Session at construction.
type Option func(*Session)

// WithNow injects the clock used by GoToToday. Tests use this to pin
// "today" without faking wall-clock time.
func WithNow(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a session anchored on initial with the given view mode.
// A zero initial date means "now"; an invalid view falls back to month.
func New(initial time.Time, view model.ViewMode, opts ...Option) *Session {
	s := &Session{
		Reference: initial,
		View:      view,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Reference.IsZero() {
		s.Reference = s.now()
	}
	if !s.View.Valid() {
		s.View = model.ViewMonth
	}
	return s
}

// GoToToday re-anchors the grid on the current date.
func (s *Session) GoToToday() {
	s.Reference = s.now()
}

// GoToNextMonth moves to the first day of the following month. Normalizing
// to day 1 keeps repeated navigation from drifting via day-of-month
// overflow (Jan 31 -> "Feb 31" would otherwise land in March).
func (s *Session) GoToNextMonth() {
	s.Reference = time.Date(s.Reference.Year(), s.Reference.Month()+1, 1,
		0, 0, 0, 0, s.Reference.Location())
}

// GoToPreviousMonth moves to the first day of the preceding month.
func (s *Session) GoToPreviousMonth() {
	s.Reference = time.Date(s.Reference.Year(), s.Reference.Month()-1, 1,
		0, 0, 0, 0, s.Reference.Location())
}

// GoToDate jumps to an arbitrary date, unconstrained.
func (s *Session) GoToDate(d time.Time) {
	s.Reference = d
}

// ToggleView flips between month and week. The reference date is unchanged.
func (s *Session) ToggleView() {
	s.View = s.View.Toggle()
}
