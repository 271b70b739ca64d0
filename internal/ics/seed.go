// Package ics maps between the widget's event model and iCalendar
// payloads: seed feeds are parsed into the initial event collection, and
// the collection can be serialized back out for export/mirroring.
package ics

import (
	"bytes"
	"errors"

	ical "github.com/arran4/golang-ical"

	appLog "calwidget/internal/log"
	"calwidget/internal/model"
)

// colorProperty is the RFC 7986 COLOR property used to round-trip event
// colors through ICS.
const colorProperty = "COLOR"

// ParseEvents parses a single ICS payload into widget events.
//
// Mapping: UID -> ID, SUMMARY -> Title, DESCRIPTION -> Description,
// DTSTART/DTEND -> Start/End (via the library's timezone handling),
// COLOR -> Color. Recurrence rules are not expanded; a recurring VEVENT
// contributes only its base occurrence, which is logged.
func ParseEvents(src Source, body []byte) ([]model.Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID)
		return nil, err
	}

	events := make([]model.Event, 0)

	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(ve)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Error("ics vevent skipped", perr, "id", src.ID)
			continue
		}
		if ve.GetProperty(ical.ComponentPropertyRrule) != nil {
			appLog.Info("ics vevent has RRULE; using base occurrence only",
				"id", src.ID, "uid", ev.ID)
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "id", src.ID, "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (model.Event, error) {
	var out model.Event

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.ID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = p.Value
	}
	if out.Title == "" {
		return out, errors.New("missing SUMMARY")
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(colorProperty); p != nil {
		out.Color = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, err
	}
	end, err := ve.GetEndAt()
	if err != nil {
		// DTEND is optional in ICS; fall back to the start so the event
		// still renders (as a minimum-height block in week view).
		end = start
	}
	out.Start = start
	out.End = end

	return out, nil
}
