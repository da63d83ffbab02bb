// Package event defines the timeline event model shared by the grid,
// the slot assigner and the storage backends.
package event

import (
	"errors"

	"github.com/google/uuid"

	"github.com/example/calendar-engine/internal/grid"
)

var (
	// ErrEndBeforeStart is returned when an event's end date precedes its start.
	ErrEndBeforeStart = errors.New("event: end date before start date")
)

// TimelineEvent is one calendar entry as consumed by the layout engine.
// Start and End are inclusive civil dates; a timed event carries both
// StartTime and EndTime, an all-day or date-span event carries neither.
type TimelineEvent struct {
	UID        string
	CalendarID string
	Summary    string
	Location   string

	Start  grid.Date
	End    grid.Date
	AllDay bool

	StartTime *grid.TimeOfDay
	EndTime   *grid.TimeOfDay

	// RRule carries the raw RRULE text for recurring events; ExDates
	// lists excluded occurrence dates. Both are empty for one-off events.
	RRule   string
	ExDates []grid.Date
}

// NewUID returns a fresh event identifier.
func NewUID() string {
	return uuid.NewString()
}

// Recurring reports whether the event carries a recurrence rule.
func (e TimelineEvent) Recurring() bool {
	return e.RRule != ""
}

// MultiDay reports whether the event spans more than one date.
func (e TimelineEvent) MultiDay() bool {
	return e.Start != e.End
}

// CoversDate reports whether the event's date span includes d.
func (e TimelineEvent) CoversDate(d grid.Date) bool {
	return !d.Before(e.Start) && !d.After(e.End)
}

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "event: validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// Validate checks the event's structural invariants. A malformed event
// must never reach the slot assigner: admitting one would poison the
// non-overlap invariant for every other event in its week.
func (e TimelineEvent) Validate() error {
	vErr := &ValidationError{}

	if e.UID == "" {
		vErr.add("uid", "uid is required")
	}
	if _, err := grid.NewDate(e.Start.Year, e.Start.Month, e.Start.Day); err != nil {
		vErr.add("start", "start is not a valid date")
	}
	if _, err := grid.NewDate(e.End.Year, e.End.Month, e.End.Day); err != nil {
		vErr.add("end", "end is not a valid date")
	}
	if vErr.HasErrors() {
		return vErr
	}

	if e.End.Before(e.Start) {
		vErr.add("end", "end date before start date")
	}
	if (e.StartTime == nil) != (e.EndTime == nil) {
		vErr.add("time", "timed events set both start and end time or neither")
	}
	if e.AllDay && e.StartTime != nil {
		vErr.add("time", "all-day events carry no times")
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
