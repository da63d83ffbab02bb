// Package recurrence expands recurring events into concrete occurrences
// within a date window.
package recurrence

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/example/calendar-engine/internal/event"
	"github.com/example/calendar-engine/internal/grid"
)

const defaultMaxOccurrences = 500

// ErrBadRule indicates an event carries a recurrence rule that cannot be
// parsed.
var ErrBadRule = errors.New("recurrence: invalid rule")

// Expander expands RRULE-bearing events into per-occurrence events. Each
// occurrence gets a derived UID of the form <uid>@<date> so layout and
// drag logic can address it independently of its siblings.
type Expander struct {
	logger         *slog.Logger
	maxOccurrences int
}

// NewExpander constructs an Expander. The logger is used to report
// skipped rules and truncated expansions; nil disables logging.
func NewExpander(logger *slog.Logger) *Expander {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Expander{logger: logger, maxOccurrences: defaultMaxOccurrences}
}

// Expand returns the concrete occurrences of e that intersect the
// inclusive date window [from, to]. A non-recurring event expands to
// itself when it overlaps the window. Occurrences carry no rule of
// their own.
func (x *Expander) Expand(e event.TimelineEvent, from, to grid.Date) ([]event.TimelineEvent, error) {
	if !e.Recurring() {
		if e.End.Before(from) || e.Start.After(to) {
			return nil, nil
		}
		return []event.TimelineEvent{e}, nil
	}

	rule, err := rrule.StrToRRule(strings.TrimPrefix(e.RRule, "RRULE:"))
	if err != nil {
		return nil, fmt.Errorf("%w: event %q: %v", ErrBadRule, e.UID, err)
	}

	dtstart := e.Start.Time()
	if e.StartTime != nil {
		dtstart = dtstart.Add(time.Duration(e.StartTime.Minutes()) * time.Minute)
	}
	rule.DTStart(dtstart)

	var set rrule.Set
	set.RRule(rule)
	for _, ex := range e.ExDates {
		// EXDATE must match the occurrence timestamp exactly, so carry
		// the event's time of day over to the excluded date.
		set.ExDate(ex.Time().Add(dtstart.Sub(e.Start.Time())))
	}

	// Widen the window start so occurrences beginning before the window
	// but spanning into it are kept.
	spanDays := e.Start.DaysUntil(e.End)
	windowStart := from.AddDays(-spanDays).Time()
	windowEnd := to.Time().Add(24*time.Hour - time.Second)

	times := set.Between(windowStart, windowEnd, true)
	if len(times) > x.maxOccurrences {
		times = times[:x.maxOccurrences]
		x.logger.Warn("recurrence expansion truncated",
			"uid", e.UID, "cap", x.maxOccurrences)
	}

	occurrences := make([]event.TimelineEvent, 0, len(times))
	for _, ts := range times {
		start := grid.DateOf(ts)
		occ := e
		occ.UID = fmt.Sprintf("%s@%s", e.UID, start)
		occ.Start = start
		occ.End = start.AddDays(spanDays)
		occ.RRule = ""
		occ.ExDates = nil
		occurrences = append(occurrences, occ)
	}
	return occurrences, nil
}

// ExpandAll expands every event in the slice across the window. Events
// with unparseable rules are skipped with a warning rather than failing
// the whole set, so one bad feed entry cannot blank the grid.
func (x *Expander) ExpandAll(events []event.TimelineEvent, from, to grid.Date) []event.TimelineEvent {
	out := make([]event.TimelineEvent, 0, len(events))
	for _, e := range events {
		occurrences, err := x.Expand(e, from, to)
		if err != nil {
			x.logger.Warn("skipping event with invalid recurrence rule",
				"uid", e.UID, "error", err)
			continue
		}
		out = append(out, occurrences...)
	}
	return out
}
