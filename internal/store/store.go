// Package store owns the canonical in-memory event collection for one
// widget session. All other components receive copies; nothing outside
// this package mutates the collection.
package store

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"calwidget/internal/model"
)

// Validation errors returned by ValidateNew before anything reaches the
// collection. A rejected event causes no partial state change.
var (
	ErrMissingTitle = errors.New("event title is required")
	ErrMissingStart = errors.New("event start is required")
	ErrMissingEnd   = errors.New("event end is required")
)

// IDFunc produces a new event identifier. It must not return the same
// value twice within a session.
type IDFunc func() string

// Hooks are invoked after the corresponding mutation has committed, so a
// host can mirror state externally (persistence, analytics). Nil fields
// are skipped.
type Hooks struct {
	OnCreate func(model.Event)
	OnUpdate func(model.Event)
	OnDelete func(id string)
}

// Store is the event collection manager. Methods are safe for concurrent
// use; mutations are serialized behind a single mutex so no two operations
// interleave partial writes.
type Store struct {
	mu           sync.Mutex
	events       []model.Event
	newID        IDFunc
	hooks        Hooks
	defaultColor string
}

// Option configures a Store at construction.
type Option func(*Store)

// WithIDFunc injects the identifier generation strategy. The default is a
// clock+counter hybrid; tests typically inject a plain counter to stay
// deterministic.
func WithIDFunc(f IDFunc) Option {
	return func(s *Store) { s.newID = f }
}

// WithHooks registers mutation hooks.
func WithHooks(h Hooks) Option {
	return func(s *Store) { s.hooks = h }
}

// WithDefaultColor overrides the color applied to events saved without
// one. An empty value keeps model.DefaultEventColor.
func WithDefaultColor(color string) Option {
	return func(s *Store) {
		if color != "" {
			s.defaultColor = color
		}
	}
}

// New creates a store seeded with the given initial events.
func New(initial []model.Event, opts ...Option) *Store {
	s := &Store{
		events:       make([]model.Event, len(initial)),
		newID:        defaultIDFunc(),
		defaultColor: model.DefaultEventColor,
	}
	copy(s.events, initial)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// defaultIDFunc returns millisecond-timestamp identifiers with a counter
// suffix, so ids stay unique even when two events are added within the
// same millisecond.
func defaultIDFunc() IDFunc {
	var seq atomic.Uint64
	return func() string {
		n := seq.Add(1)
		return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + strconv.FormatUint(n, 10)
	}
}

// ValidateNew checks the fields required to save an event. Callers are
// expected to run this before Add so that invalid input never reaches the
// collection. A malformed range (end before start) is deliberately not an
// error; layout degrades instead.
func ValidateNew(ev model.Event) error {
	if ev.Title == "" {
		return ErrMissingTitle
	}
	if ev.Start.IsZero() {
		return ErrMissingStart
	}
	if ev.End.IsZero() {
		return ErrMissingEnd
	}
	return nil
}

// Add appends an event to the collection and returns the stored copy. An
// empty ID is replaced with a freshly generated one; a missing color gets
// the documented default.
func (s *Store) Add(ev model.Event) model.Event {
	s.mu.Lock()
	if ev.ID == "" {
		ev.ID = s.newID()
	}
	if ev.Color == "" {
		ev.Color = s.defaultColor
	}
	s.events = append(s.events, ev)
	s.mu.Unlock()

	if s.hooks.OnCreate != nil {
		s.hooks.OnCreate(ev)
	}
	return ev
}

// Update merges the patch into the event with the given id and returns the
// updated event. An unknown id is a benign no-op (found=false), favoring
// idempotent retry semantics over strict failure.
func (s *Store) Update(id string, patch model.EventPatch) (model.Event, bool) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return model.Event{}, false
	}
	updated := patch.Apply(s.events[idx])
	s.events[idx] = updated
	s.mu.Unlock()

	if s.hooks.OnUpdate != nil {
		s.hooks.OnUpdate(updated)
	}
	return updated, true
}

// Delete removes the event with the given id. An unknown id is a no-op.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.events = append(s.events[:idx], s.events[idx+1:]...)
	s.mu.Unlock()

	if s.hooks.OnDelete != nil {
		s.hooks.OnDelete(id)
	}
	return true
}

// Get returns the event with the given id.
func (s *Store) Get(id string) (model.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return model.Event{}, false
	}
	return s.events[idx], true
}

// List returns a copy of the collection in insertion order.
func (s *Store) List() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// Replace swaps the whole collection, e.g. when reseeding from an ICS
// source. Hooks are not fired; this is a bulk load, not a user action.
func (s *Store) Replace(events []model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make([]model.Event, len(events))
	copy(s.events, events)
}

// indexOf returns the position of id in the collection, or -1. Callers
// must hold s.mu.
func (s *Store) indexOf(id string) int {
	for i, ev := range s.events {
		if ev.ID == id {
			return i
		}
	}
	return -1
}
