// Package gesture turns pointer press/move/release sequences over grid
// cells into normalized date ranges and event-move deltas. Both state
// machines here are state-local and synchronous: they are driven
// directly by discrete input events on the UI thread and never touch
// stored event data.
package gesture

import (
	"fmt"

	"github.com/example/calendar-engine/internal/grid"
)

// DatePoint is a pointer-derived location on the grid: a date, plus a
// time of day when the pointer sat on an hour cell of the week or day
// view. Month view cells produce date-only points.
type DatePoint struct {
	Date grid.Date
	Time *grid.TimeOfDay
}

// PointAt returns a date-only point.
func PointAt(d grid.Date) DatePoint {
	return DatePoint{Date: d}
}

// PointAtTime returns a point on an hour cell.
func PointAtTime(d grid.Date, t grid.TimeOfDay) DatePoint {
	return DatePoint{Date: d, Time: &t}
}

// Compare orders points by (date, time). A point without a time sorts
// before any timed point on the same date.
func (p DatePoint) Compare(other DatePoint) int {
	if c := p.Date.Compare(other.Date); c != 0 {
		return c
	}
	switch {
	case p.Time == nil && other.Time == nil:
		return 0
	case p.Time == nil:
		return -1
	case other.Time == nil:
		return 1
	default:
		return p.Time.Compare(*other.Time)
	}
}

// String formats the point for transition logging.
func (p DatePoint) String() string {
	if p.Time == nil {
		return p.Date.String()
	}
	return fmt.Sprintf("%s %s", p.Date, p.Time)
}

// SelectionRange is a normalized date/time range: Start never exceeds
// End under DatePoint ordering.
type SelectionRange struct {
	Start DatePoint
	End   DatePoint
}

// Normalize orders two points into a range satisfying Start <= End.
func Normalize(a, b DatePoint) SelectionRange {
	if a.Compare(b) <= 0 {
		return SelectionRange{Start: a, End: b}
	}
	return SelectionRange{Start: b, End: a}
}

// Contains reports whether d falls within the range's date span.
func (r SelectionRange) Contains(d grid.Date) bool {
	return !d.Before(r.Start.Date) && !d.After(r.End.Date)
}

// ContainsHour reports whether the hour cell at (d, hour) intersects the
// range. The cell's [hour:00, hour:59] window is checked against the
// selection's boundary times: first and last days clip to the boundary,
// middle days are fully selected.
func (r SelectionRange) ContainsHour(d grid.Date, hour int) bool {
	if !r.Contains(d) {
		return false
	}
	cellStart := grid.TimeOfDay{Hour: hour, Minute: 0}
	cellEnd := grid.TimeOfDay{Hour: hour, Minute: 59}

	if d == r.Start.Date && r.Start.Time != nil && cellEnd.Compare(*r.Start.Time) < 0 {
		return false
	}
	if d == r.End.Date && r.End.Time != nil && cellStart.Compare(*r.End.Time) > 0 {
		return false
	}
	return true
}

// MultiDay reports whether the range spans more than one date.
func (r SelectionRange) MultiDay() bool {
	return r.Start.Date != r.End.Date
}

// DayCount returns the number of dates the range covers, inclusive.
func (r SelectionRange) DayCount() int {
	return r.Start.Date.DaysUntil(r.End.Date) + 1
}

// Dates returns every date the range covers, in order.
func (r SelectionRange) Dates() []grid.Date {
	count := r.DayCount()
	dates := make([]grid.Date, 0, count)
	for i := 0; i < count; i++ {
		dates = append(dates, r.Start.Date.AddDays(i))
	}
	return dates
}
