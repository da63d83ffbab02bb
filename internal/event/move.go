package event

import (
	"time"

	"github.com/example/calendar-engine/internal/gesture"
	"github.com/example/calendar-engine/internal/grid"
)

const minutesPerDay = 24 * 60

// ApplyMove returns a copy of e shifted by the offset between the move's
// origin and target. The shift applies the same delta to start and end,
// so the event's duration is preserved exactly. Date-only moves keep the
// event's times untouched; when both points carry a time and the event
// is timed, the time-of-day delta is applied too, carrying across
// midnight into the dates when needed.
func ApplyMove(e TimelineEvent, m gesture.Move) TimelineEvent {
	dayDelta := m.Origin.Date.DaysUntil(m.Target.Date)

	moved := e
	moved.Start = e.Start.AddDays(dayDelta)
	moved.End = e.End.AddDays(dayDelta)

	if m.Origin.Time == nil || m.Target.Time == nil || e.StartTime == nil || e.EndTime == nil {
		return moved
	}

	minuteDelta := m.Target.Time.Minutes() - m.Origin.Time.Minutes()
	moved.Start, moved.StartTime = shiftTime(moved.Start, *e.StartTime, minuteDelta)
	moved.End, moved.EndTime = shiftTime(moved.End, *e.EndTime, minuteDelta)
	return moved
}

// shiftTime adds delta minutes to a (date, time) pair, rolling over day
// boundaries in either direction.
func shiftTime(d grid.Date, t grid.TimeOfDay, delta int) (grid.Date, *grid.TimeOfDay) {
	total := t.Minutes() + delta
	days := total / minutesPerDay
	total %= minutesPerDay
	if total < 0 {
		total += minutesPerDay
		days--
	}
	shifted := grid.TimeOfDay{Hour: total / 60, Minute: total % 60}
	return d.AddDays(days), &shifted
}

// Duration returns the event's timed length. All-day and date-span
// events report the number of covered days instead of a clock duration,
// expressed in whole days.
func (e TimelineEvent) Duration() time.Duration {
	if e.StartTime != nil && e.EndTime != nil {
		days := e.Start.DaysUntil(e.End)
		minutes := days*minutesPerDay + e.EndTime.Minutes() - e.StartTime.Minutes()
		return time.Duration(minutes) * time.Minute
	}
	days := e.Start.DaysUntil(e.End) + 1
	return time.Duration(days) * 24 * time.Hour
}
