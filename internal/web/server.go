// Package web exposes the widget over HTTP: JSON APIs for the event
// collection, navigation, grids and layout, plus the embedded static UI.
package web

import (
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"calwidget/internal/config"
	"calwidget/internal/grid"
	"calwidget/internal/ics"
	"calwidget/internal/layout"
	appLog "calwidget/internal/log"
	"calwidget/internal/model"
	"calwidget/internal/query"
	"calwidget/internal/session"
	"calwidget/internal/store"
)

// Server provides the HTTP surface for one widget session.
//
// The session's navigation state is mutated only under sessionMu, so no
// two in-flight requests interleave partial transitions; the store guards
// its own collection the same way.
type Server struct {
	cfg  *config.Config
	mux  *http.ServeMux
	loc  *time.Location
	mets layout.Metrics

	store *store.Store

	sessionMu sync.Mutex
	session   *session.Session

	// now is injectable so handler tests can pin "today".
	now func() time.Time
}

// embeddedStatic contains the built-in widget UI.
//
//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs a new Server around an event store and a
// navigation session.
func NewServer(cfg *config.Config, st *store.Store, sess *session.Session) *Server {
	s := &Server{
		cfg:     cfg,
		mux:     http.NewServeMux(),
		loc:     cfg.Location(),
		mets:    cfg.Layout.Metrics(),
		store:   st,
		session: sess,
		now:     time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured. Empty
// username or password counts as disabled.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="calwidget", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/events", s.handleListEvents)
	s.mux.HandleFunc("POST /api/events", s.handleCreateEvent)
	s.mux.HandleFunc("GET /api/events/{id}", s.handleGetEvent)
	s.mux.HandleFunc("PATCH /api/events/{id}", s.handlePatchEvent)
	s.mux.HandleFunc("DELETE /api/events/{id}", s.handleDeleteEvent)

	s.mux.HandleFunc("GET /api/view", s.handleGetView)
	s.mux.HandleFunc("POST /api/view", s.handlePostView)

	s.mux.HandleFunc("GET /api/grid", s.handleGrid)
	s.mux.HandleFunc("GET /api/layout", s.handleLayout)
	s.mux.HandleFunc("GET /api/export.ics", s.handleExport)

	s.mux.HandleFunc("GET /preview.png", s.handlePreview)

	// The embedded widget UI serves every remaining path.
	s.mux.Handle("/", s.staticFileServer())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// eventsResponse is the JSON response shape for /api/events.
type eventsResponse struct {
	Events []model.Event `json:"events"`
}

// handleListEvents returns events sorted by start time.
//
// GET /api/events            -> whole collection
// GET /api/events?date=D     -> events starting on day D (2006-01-02)
// GET /api/events?week=D     -> events starting in D's Sunday-based week
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events := s.localized(s.store.List())

	q := r.URL.Query()
	if v := q.Get("date"); v != "" {
		day, err := s.parseDay(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date parameter")
			return
		}
		events = query.OnDate(events, day)
	} else if v := q.Get("week"); v != "" {
		day, err := s.parseDay(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid week parameter")
			return
		}
		events = query.InWeek(events, day)
	}

	writeJSON(w, http.StatusOK, eventsResponse{Events: query.SortByStart(events)})
}

// eventPayload is the request shape for event creation.
type eventPayload struct {
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
}

// handleCreateEvent validates and stores a new event. Validation failures
// are rejected before the collection is touched; nothing partial is
// committed.
func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var payload eventPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ev := model.Event{
		Title:       payload.Title,
		Start:       payload.Start,
		End:         payload.End,
		Description: payload.Description,
		Color:       payload.Color,
	}
	if err := store.ValidateNew(ev); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stored := s.store.Add(ev)
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ev, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// handlePatchEvent merges a typed partial update into an event. An unknown
// id answers 204: updates are benign no-ops rather than faults, so retries
// stay idempotent.
func (s *Server) handlePatchEvent(w http.ResponseWriter, r *http.Request) {
	var patch model.EventPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ev, ok := s.store.Update(r.PathValue("id"), patch)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// handleDeleteEvent removes an event. Deleting an unknown id is a no-op;
// both cases answer 204.
func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	s.store.Delete(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// viewResponse is the JSON shape of the navigation state.
type viewResponse struct {
	Reference time.Time      `json:"reference"`
	View      model.ViewMode `json:"view"`
}

func (s *Server) handleGetView(w http.ResponseWriter, _ *http.Request) {
	s.sessionMu.Lock()
	resp := viewResponse{Reference: s.session.Reference, View: s.session.View}
	s.sessionMu.Unlock()
	writeJSON(w, http.StatusOK, resp)
}

// viewRequest drives the navigation state machine.
//
// POST /api/view {"action": "today"|"next"|"previous"|"toggle"|"goto", "date": "2006-01-02"}
type viewRequest struct {
	Action string `json:"action"`
	Date   string `json:"date,omitempty"`
}

func (s *Server) handlePostView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	switch req.Action {
	case "today":
		s.session.GoToToday()
	case "next":
		s.session.GoToNextMonth()
	case "previous":
		s.session.GoToPreviousMonth()
	case "toggle":
		s.session.ToggleView()
	case "goto":
		day, err := s.parseDay(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "goto requires a valid date")
			return
		}
		s.session.GoToDate(day)
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
		return
	}

	writeJSON(w, http.StatusOK, viewResponse{Reference: s.session.Reference, View: s.session.View})
}

// monthGridResponse is the JSON shape of a month grid.
type monthGridResponse struct {
	View  model.ViewMode  `json:"view"`
	Cells []model.DayCell `json:"cells"`
}

// weekGridResponse is the JSON shape of a week grid.
type weekGridResponse struct {
	View  model.ViewMode `json:"view"`
	Days  []time.Time    `json:"days"`
	Hours []string       `json:"hours"`
}

// handleGrid returns the rendered grid geometry for a reference date.
//
// GET /api/grid?date=2006-01-02&view=month|week
// Missing parameters fall back to the session's navigation state.
func (s *Server) handleGrid(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	s.sessionMu.Lock()
	ref := s.session.Reference
	view := s.session.View
	s.sessionMu.Unlock()

	if v := q.Get("date"); v != "" {
		day, err := s.parseDay(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date parameter")
			return
		}
		ref = day
	}
	if v := q.Get("view"); v != "" {
		vm := model.ViewMode(v)
		if !vm.Valid() {
			writeError(w, http.StatusBadRequest, "invalid view parameter")
			return
		}
		view = vm
	}

	switch view {
	case model.ViewWeek:
		writeJSON(w, http.StatusOK, weekGridResponse{
			View:  model.ViewWeek,
			Days:  grid.WeekGrid(ref),
			Hours: grid.Hours(),
		})
	default:
		writeJSON(w, http.StatusOK, monthGridResponse{
			View:  model.ViewMonth,
			Cells: grid.MonthGrid(ref, s.now().In(s.loc)),
		})
	}
}

// layoutResponse is the JSON shape of a laid-out day column.
type layoutResponse struct {
	Events  []model.PositionedEvent `json:"events"`
	Overlap bool                    `json:"overlap"`
}

// handleLayout returns the positioned events for one day of the week view,
// plus an overlap flag so the UI can surface conflicts.
//
// GET /api/layout?date=2006-01-02
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	day, err := s.parseDay(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "layout requires a valid date parameter")
		return
	}

	dayEvents := query.SortByStart(query.OnDate(s.localized(s.store.List()), day))
	writeJSON(w, http.StatusOK, layoutResponse{
		Events:  layout.Position(dayEvents, s.mets),
		Overlap: layout.HasOverlap(dayEvents),
	})
}

// handleExport serves the whole collection as a single ICS payload.
func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="calwidget.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(ics.Export(s.store.List()))
}

// handlePreview serves the last captured PNG snapshot from disk.
// http.ServeFile maps missing files and permission problems to sensible
// status codes on its own.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, s.cfg.Snapshot.Path)
}

// staticFileServer returns an http.Handler serving the embedded widget UI.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}
	return http.FileServer(http.FS(sub))
}

// localized returns copies of the events with their times converted into
// the configured timezone, so day and week filters compare calendar dates
// in the same zone the date parameters are parsed in. Stored events keep
// whatever zone the client submitted.
func (s *Server) localized(events []model.Event) []model.Event {
	out := make([]model.Event, len(events))
	for i, ev := range events {
		ev.Start = ev.Start.In(s.loc)
		ev.End = ev.End.In(s.loc)
		out[i] = ev
	}
	return out
}

// parseDay parses a 2006-01-02 day parameter in the configured timezone.
func (s *Server) parseDay(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("empty date")
	}
	return time.ParseInLocation("2006-01-02", v, s.loc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
