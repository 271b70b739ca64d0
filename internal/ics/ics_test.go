package ics

import (
	"strings"
	"testing"
	"time"

	"calwidget/internal/model"
)

const sampleICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:lunch-1\r\n" +
	"DTSTAMP:20250101T000000Z\r\n" +
	"DTSTART:20250116T123000Z\r\n" +
	"DTEND:20250116T133000Z\r\n" +
	"SUMMARY:Lunch\r\n" +
	"DESCRIPTION:Team lunch\r\n" +
	"COLOR:#10b981\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:untitled-1\r\n" +
	"DTSTAMP:20250101T000000Z\r\n" +
	"DTSTART:20250117T090000Z\r\n" +
	"DTEND:20250117T100000Z\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:no-end-1\r\n" +
	"DTSTAMP:20250101T000000Z\r\n" +
	"DTSTART:20250118T090000Z\r\n" +
	"SUMMARY:Open ended\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParseEvents(t *testing.T) {
	events, err := ParseEvents(Source{ID: "test"}, []byte(sampleICS))
	if err != nil {
		t.Fatalf("ParseEvents: %v", err)
	}

	// The summary-less VEVENT is skipped; the others survive.
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2: %+v", len(events), events)
	}

	lunch := events[0]
	if lunch.ID != "lunch-1" || lunch.Title != "Lunch" {
		t.Errorf("lunch = %+v", lunch)
	}
	if lunch.Description != "Team lunch" || lunch.Color != "#10b981" {
		t.Errorf("lunch optional fields = %+v", lunch)
	}
	if lunch.Start.Hour() != 12 || lunch.Start.Minute() != 30 {
		t.Errorf("lunch start = %v", lunch.Start)
	}
	if got := lunch.End.Sub(lunch.Start); got != time.Hour {
		t.Errorf("lunch duration = %v, want 1h", got)
	}

	// Missing DTEND falls back to the start.
	open := events[1]
	if open.ID != "no-end-1" {
		t.Fatalf("second event = %+v", open)
	}
	if !open.End.Equal(open.Start) {
		t.Errorf("missing DTEND should fall back to start, got %v", open.End)
	}
}

func TestParseEventsEmptyBody(t *testing.T) {
	if _, err := ParseEvents(Source{ID: "test"}, nil); err == nil {
		t.Error("empty body should fail")
	}
}

func TestExportRoundTrip(t *testing.T) {
	start := time.Date(2025, time.January, 16, 12, 30, 0, 0, time.UTC)
	in := []model.Event{
		{
			ID:          "lunch-1",
			Title:       "Lunch",
			Start:       start,
			End:         start.Add(time.Hour),
			Description: "Team lunch",
			Color:       "#10b981",
		},
		{
			ID:    "standup-1",
			Title: "Standup",
			Start: start.AddDate(0, 0, 1),
			End:   start.AddDate(0, 0, 1).Add(15 * time.Minute),
		},
	}

	payload := Export(in)
	if !strings.Contains(string(payload), "BEGIN:VEVENT") {
		t.Fatalf("export does not look like ICS:\n%s", payload)
	}

	out, err := ParseEvents(Source{ID: "roundtrip"}, payload)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d events back, want 2", len(out))
	}

	byID := map[string]model.Event{}
	for _, ev := range out {
		byID[ev.ID] = ev
	}
	lunch, ok := byID["lunch-1"]
	if !ok {
		t.Fatalf("lunch-1 missing from export: %+v", out)
	}
	if lunch.Title != "Lunch" || lunch.Color != "#10b981" || lunch.Description != "Team lunch" {
		t.Errorf("lunch fields lost in export: %+v", lunch)
	}
	if !lunch.Start.Equal(in[0].Start) {
		t.Errorf("lunch start = %v, want %v", lunch.Start, in[0].Start)
	}
}

func TestCachePathForURLIsStable(t *testing.T) {
	f := NewFetcher(t.TempDir())
	a := f.cachePathForURL("https://example.com/a.ics")
	b := f.cachePathForURL("https://example.com/b.ics")
	if a == b {
		t.Error("distinct URLs must map to distinct cache paths")
	}
	if a != f.cachePathForURL("https://example.com/a.ics") {
		t.Error("cache path must be stable for the same URL")
	}
}
