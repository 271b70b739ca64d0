package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"calwidget/internal/model"
)

// Export serializes the event collection into a single ICS payload,
// suitable for the export endpoint and the mirror-on-change file.
func Export(events []model.Event) []byte {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//calwidget//calendar//EN")

	now := time.Now().UTC()
	for _, ev := range events {
		ve := cal.AddEvent(ev.ID)
		ve.SetDtStampTime(now)
		ve.SetSummary(ev.Title)
		ve.SetStartAt(ev.Start)
		ve.SetEndAt(ev.End)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Color != "" {
			ve.SetProperty(colorProperty, ev.Color)
		}
	}

	return []byte(cal.Serialize())
}
