// Package layout assigns date-span events to horizontal slots inside
// month grid rows so overlapping spans never share a slot. Assignment is
// fully deterministic: the same grid and events always produce the same
// segments, regardless of input order.
package layout

import (
	"fmt"
	"sort"

	"github.com/example/calendar-engine/internal/event"
	"github.com/example/calendar-engine/internal/grid"
)

// Segment is one event's visible run inside a single week row. An event
// spanning several weeks produces one segment per row it touches.
type Segment struct {
	UID     string
	Summary string

	// Week is the row index within the month grid, StartCol and EndCol
	// the inclusive column range 0..6.
	Week     int
	StartCol int
	EndCol   int

	// Slot is the vertical lane within the row. Slot n renders below
	// slot n-1; segments in the same row never overlap within a slot.
	Slot int

	// StartsHere and EndsHere report whether the event's true start or
	// end falls inside this row, as opposed to continuing from or into a
	// neighbouring week.
	StartsHere bool
	EndsHere   bool

	// First marks the event's first segment across the whole grid. Hosts
	// draw the event title only there.
	First bool
}

// Span returns the number of columns the segment covers.
func (s Segment) Span() int {
	return s.EndCol - s.StartCol + 1
}

// WeekSlots is the slot assignment for one week row.
type WeekSlots struct {
	Segments []Segment

	// SlotCount is the number of lanes the row needs, the highest
	// assigned slot plus one. Zero when the row holds no events.
	SlotCount int
}

// AssignWeekSlots lays out the given events across one week of dates.
// Events that do not intersect the week are ignored; duplicate UIDs
// beyond the first are dropped so a recurring event expanded into the
// same week renders once. A malformed event aborts the layout with an
// error naming its UID, since admitting it would corrupt slot placement
// for every other event in the row.
func AssignWeekSlots(week [7]grid.Date, events []event.TimelineEvent) (WeekSlots, error) {
	segments, err := clipToWeek(week, 0, events)
	if err != nil {
		return WeekSlots{}, err
	}
	count := assignSlots(segments)
	return WeekSlots{Segments: segments, SlotCount: count}, nil
}

// CollectSegments lays out events across every row of a month grid. The
// returned segments are ordered by row, then slot, then start column.
// Each event's first segment in the grid carries the First flag.
func CollectSegments(g grid.MonthGrid, events []event.TimelineEvent) ([]Segment, error) {
	var all []Segment
	titled := make(map[string]bool)

	for row := range g.Weeks {
		var week [7]grid.Date
		for col, day := range g.Weeks[row].Days {
			week[col] = day.Date
		}

		segments, err := clipToWeek(week, row, events)
		if err != nil {
			return nil, err
		}
		assignSlots(segments)

		sort.Slice(segments, func(i, j int) bool {
			if segments[i].Slot != segments[j].Slot {
				return segments[i].Slot < segments[j].Slot
			}
			return segments[i].StartCol < segments[j].StartCol
		})
		for i := range segments {
			if !titled[segments[i].UID] {
				segments[i].First = true
				titled[segments[i].UID] = true
			}
		}
		all = append(all, segments...)
	}
	return all, nil
}

// clipToWeek validates events and converts those intersecting the week
// into unslotted segments, ordered for greedy assignment. Only date-span
// events take part: timed events render inside their day cells, not in
// the horizontal lanes.
func clipToWeek(week [7]grid.Date, row int, events []event.TimelineEvent) ([]Segment, error) {
	seen := make(map[string]bool, len(events))
	segments := make([]Segment, 0, len(events))

	for _, e := range events {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("layout: event %q: %w", e.UID, err)
		}
		if e.StartTime != nil {
			continue
		}
		if seen[e.UID] {
			continue
		}
		seen[e.UID] = true

		if e.End.Before(week[0]) || e.Start.After(week[6]) {
			continue
		}

		startCol := 0
		if e.Start.After(week[0]) {
			startCol = week[0].DaysUntil(e.Start)
		}
		endCol := 6
		if e.End.Before(week[6]) {
			endCol = week[0].DaysUntil(e.End)
		}

		segments = append(segments, Segment{
			UID:        e.UID,
			Summary:    e.Summary,
			Week:       row,
			StartCol:   startCol,
			EndCol:     endCol,
			StartsHere: !e.Start.Before(week[0]),
			EndsHere:   !e.End.After(week[6]),
		})
	}

	// Earlier columns first, longer spans before shorter ones at the
	// same column, UID as the final tie break.
	sort.Slice(segments, func(i, j int) bool {
		a, b := segments[i], segments[j]
		if a.StartCol != b.StartCol {
			return a.StartCol < b.StartCol
		}
		if a.Span() != b.Span() {
			return a.Span() > b.Span()
		}
		return a.UID < b.UID
	})
	return segments, nil
}

// assignSlots greedily places each ordered segment into the lowest slot
// free across all of its columns and returns the number of lanes used.
func assignSlots(segments []Segment) int {
	var occupied [7][]bool
	count := 0

	for i := range segments {
		seg := &segments[i]
		slot := 0
	search:
		for {
			for col := seg.StartCol; col <= seg.EndCol; col++ {
				if slot < len(occupied[col]) && occupied[col][slot] {
					slot++
					continue search
				}
			}
			break
		}
		for col := seg.StartCol; col <= seg.EndCol; col++ {
			for len(occupied[col]) <= slot {
				occupied[col] = append(occupied[col], false)
			}
			occupied[col][slot] = true
		}
		seg.Slot = slot
		if slot+1 > count {
			count = slot + 1
		}
	}
	return count
}
