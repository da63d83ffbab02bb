package ics

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/example/calendar-engine/internal/event"
	"github.com/example/calendar-engine/internal/grid"
)

// Parse converts an ICS payload into timeline events for the given
// calendar. Malformed VEVENTs are skipped with a warning so one broken
// entry cannot take the whole feed down; an unparseable payload is an
// error.
func Parse(calendarID string, body []byte, logger *slog.Logger) ([]event.TimelineEvent, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if len(body) == 0 {
		return nil, errors.New("ics: empty payload")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ics: parse calendar: %w", err)
	}

	events := make([]event.TimelineEvent, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		e, err := parseVEvent(calendarID, ve)
		if err != nil {
			logger.Warn("skipping malformed vevent", "calendar", calendarID, "error", err)
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func parseVEvent(calendarID string, ve *ical.VEvent) (event.TimelineEvent, error) {
	var e event.TimelineEvent
	e.CalendarID = calendarID

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return e, errors.New("missing UID")
	}
	e.UID = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		e.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		e.Location = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || dtStart.Value == "" {
		return e, errors.New("missing DTSTART")
	}
	e.AllDay = isDateOnly(dtStart)

	start, err := ve.GetStartAt()
	if err != nil {
		return e, fmt.Errorf("event %s: DTSTART: %w", e.UID, err)
	}
	e.Start = grid.DateOf(start)

	end, endErr := ve.GetEndAt()
	switch {
	case endErr != nil:
		// No DTEND: a single-day or point event.
		e.End = e.Start
	case e.AllDay:
		// DTEND is exclusive for all-day events; the stored end date is
		// inclusive.
		e.End = grid.DateOf(end).AddDays(-1)
		if e.End.Before(e.Start) {
			e.End = e.Start
		}
	default:
		e.End = grid.DateOf(end)
	}

	if !e.AllDay {
		st := grid.TimeOfDay{Hour: start.Hour(), Minute: start.Minute()}
		e.StartTime = &st
		if endErr == nil {
			et := grid.TimeOfDay{Hour: end.Hour(), Minute: end.Minute()}
			e.EndTime = &et
		} else {
			et := st
			e.EndTime = &et
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		e.RRule = p.Value
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			d, err := parseExDate(part)
			if err != nil {
				return e, fmt.Errorf("event %s: EXDATE %q: %w", e.UID, part, err)
			}
			e.ExDates = append(e.ExDates, d)
		}
	}

	if err := e.Validate(); err != nil {
		return e, fmt.Errorf("event %s: %w", e.UID, err)
	}
	return e, nil
}

// isDateOnly reports whether a DTSTART property denotes an all-day
// value, either via VALUE=DATE or a bare YYYYMMDD form.
func isDateOnly(p *ical.IANAProperty) bool {
	if params := p.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(p.Value, "T")
}

// parseExDate handles the DATE, floating DATE-TIME and UTC DATE-TIME
// forms an EXDATE value can take.
func parseExDate(value string) (grid.Date, error) {
	layouts := []string{"20060102", "20060102T150405", "20060102T150405Z"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return grid.DateOf(t), nil
		}
	}
	return grid.Date{}, errors.New("unrecognized date form")
}
