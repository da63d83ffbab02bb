package layout

import (
	"strings"
	"testing"
	"time"

	"github.com/example/calendar-engine/internal/event"
	"github.com/example/calendar-engine/internal/grid"
)

// weekOf returns the seven dates starting at the given Monday.
func weekOf(t *testing.T, year int, month time.Month, day int) [7]grid.Date {
	t.Helper()
	start, err := grid.NewDate(year, month, day)
	if err != nil {
		t.Fatalf("NewDate(%d, %s, %d): %v", year, month, day, err)
	}
	if start.Weekday() != time.Monday {
		t.Fatalf("%v is not a Monday", start)
	}
	var week [7]grid.Date
	for i := range week {
		week[i] = start.AddDays(i)
	}
	return week
}

func span(uid string, start, end grid.Date) event.TimelineEvent {
	return event.TimelineEvent{UID: uid, Summary: uid, Start: start, End: end}
}

func slotOf(t *testing.T, segments []Segment, uid string) int {
	t.Helper()
	for _, s := range segments {
		if s.UID == uid {
			return s.Slot
		}
	}
	t.Fatalf("no segment for %q", uid)
	return -1
}

func TestAssignWeekSlots_OverlappingSpansSeparate(t *testing.T) {
	t.Parallel()

	// Week of 2024-03-11. A runs Mon-Wed, B runs Tue-Thu: they overlap
	// on Tue and Wed and must occupy different slots.
	week := weekOf(t, 2024, time.March, 11)
	events := []event.TimelineEvent{
		span("A", week[0], week[2]),
		span("B", week[1], week[3]),
	}

	ws, err := AssignWeekSlots(week, events)
	if err != nil {
		t.Fatalf("AssignWeekSlots: %v", err)
	}
	if len(ws.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(ws.Segments))
	}
	if slotOf(t, ws.Segments, "A") != 0 {
		t.Errorf("A slot = %d, want 0", slotOf(t, ws.Segments, "A"))
	}
	if slotOf(t, ws.Segments, "B") != 1 {
		t.Errorf("B slot = %d, want 1", slotOf(t, ws.Segments, "B"))
	}
	if ws.SlotCount != 2 {
		t.Errorf("SlotCount = %d, want 2", ws.SlotCount)
	}
}

func TestAssignWeekSlots_DisjointSpansShareSlot(t *testing.T) {
	t.Parallel()

	// C runs Mon-Tue, D runs Thu-Fri: no shared column, both fit slot 0.
	week := weekOf(t, 2024, time.March, 11)
	events := []event.TimelineEvent{
		span("C", week[0], week[1]),
		span("D", week[3], week[4]),
	}

	ws, err := AssignWeekSlots(week, events)
	if err != nil {
		t.Fatalf("AssignWeekSlots: %v", err)
	}
	if slotOf(t, ws.Segments, "C") != 0 || slotOf(t, ws.Segments, "D") != 0 {
		t.Errorf("disjoint spans split slots: C=%d D=%d, want both 0",
			slotOf(t, ws.Segments, "C"), slotOf(t, ws.Segments, "D"))
	}
	if ws.SlotCount != 1 {
		t.Errorf("SlotCount = %d, want 1", ws.SlotCount)
	}
}

func TestAssignWeekSlots_SingleDayPushedBelowSpan(t *testing.T) {
	t.Parallel()

	week := weekOf(t, 2024, time.March, 11)
	events := []event.TimelineEvent{
		span("single", week[0], week[0]),
		span("long", week[0], week[4]),
	}

	ws, err := AssignWeekSlots(week, events)
	if err != nil {
		t.Fatalf("AssignWeekSlots: %v", err)
	}
	// Longer span wins slot 0 at the shared start column.
	if slotOf(t, ws.Segments, "long") != 0 {
		t.Errorf("long slot = %d, want 0", slotOf(t, ws.Segments, "long"))
	}
	if slotOf(t, ws.Segments, "single") != 1 {
		t.Errorf("single slot = %d, want 1", slotOf(t, ws.Segments, "single"))
	}
}

func TestAssignWeekSlots_FillsGapsGreedily(t *testing.T) {
	t.Parallel()

	week := weekOf(t, 2024, time.March, 11)
	events := []event.TimelineEvent{
		span("mon-tue", week[0], week[1]),
		span("mon-wed", week[0], week[2]),
		span("thu-fri", week[3], week[4]),
	}

	ws, err := AssignWeekSlots(week, events)
	if err != nil {
		t.Fatalf("AssignWeekSlots: %v", err)
	}
	// mon-wed takes slot 0, mon-tue slot 1, and thu-fri drops back into
	// the free slot 0 rather than opening slot 2.
	if slotOf(t, ws.Segments, "mon-wed") != 0 {
		t.Errorf("mon-wed slot = %d, want 0", slotOf(t, ws.Segments, "mon-wed"))
	}
	if slotOf(t, ws.Segments, "mon-tue") != 1 {
		t.Errorf("mon-tue slot = %d, want 1", slotOf(t, ws.Segments, "mon-tue"))
	}
	if slotOf(t, ws.Segments, "thu-fri") != 0 {
		t.Errorf("thu-fri slot = %d, want 0", slotOf(t, ws.Segments, "thu-fri"))
	}
}

func TestAssignWeekSlots_DeterministicUnderReordering(t *testing.T) {
	t.Parallel()

	week := weekOf(t, 2024, time.March, 11)
	events := []event.TimelineEvent{
		span("a", week[0], week[2]),
		span("b", week[0], week[2]),
		span("c", week[1], week[4]),
		span("d", week[5], week[6]),
	}
	reversed := make([]event.TimelineEvent, len(events))
	for i, e := range events {
		reversed[len(events)-1-i] = e
	}

	first, err := AssignWeekSlots(week, events)
	if err != nil {
		t.Fatalf("AssignWeekSlots: %v", err)
	}
	second, err := AssignWeekSlots(week, reversed)
	if err != nil {
		t.Fatalf("AssignWeekSlots(reversed): %v", err)
	}

	if len(first.Segments) != len(second.Segments) {
		t.Fatalf("segment counts differ: %d vs %d", len(first.Segments), len(second.Segments))
	}
	for i := range first.Segments {
		if first.Segments[i] != second.Segments[i] {
			t.Errorf("segment %d differs: %+v vs %+v", i, first.Segments[i], second.Segments[i])
		}
	}
	// Equal spans at the same column break the tie by UID.
	if slotOf(t, first.Segments, "a") != 0 || slotOf(t, first.Segments, "b") != 1 {
		t.Errorf("uid tie break: a=%d b=%d, want 0 and 1",
			slotOf(t, first.Segments, "a"), slotOf(t, first.Segments, "b"))
	}
}

func TestAssignWeekSlots_ClipsToWeekColumns(t *testing.T) {
	t.Parallel()

	week := weekOf(t, 2024, time.March, 11)
	events := []event.TimelineEvent{
		// Starts the previous Friday, ends the following Tuesday.
		span("long", week[0].AddDays(-3), week[6].AddDays(2)),
		// Entirely outside the week.
		span("before", week[0].AddDays(-5), week[0].AddDays(-2)),
		span("after", week[6].AddDays(1), week[6].AddDays(3)),
	}

	ws, err := AssignWeekSlots(week, events)
	if err != nil {
		t.Fatalf("AssignWeekSlots: %v", err)
	}
	if len(ws.Segments) != 1 {
		t.Fatalf("got %d segments, want only the overlapping one", len(ws.Segments))
	}
	seg := ws.Segments[0]
	if seg.StartCol != 0 || seg.EndCol != 6 {
		t.Errorf("clipped columns = %d..%d, want 0..6", seg.StartCol, seg.EndCol)
	}
	if seg.StartsHere || seg.EndsHere {
		t.Errorf("continuation flags = starts %v ends %v, want both false", seg.StartsHere, seg.EndsHere)
	}
}

func TestAssignWeekSlots_TimedEventsExcluded(t *testing.T) {
	t.Parallel()

	week := weekOf(t, 2024, time.March, 11)
	timed := span("meeting", week[1], week[1])
	st, _ := grid.NewTimeOfDay(9, 0)
	et, _ := grid.NewTimeOfDay(10, 0)
	timed.StartTime, timed.EndTime = &st, &et

	events := []event.TimelineEvent{
		timed,
		span("offsite", week[0], week[3]),
	}

	ws, err := AssignWeekSlots(week, events)
	if err != nil {
		t.Fatalf("AssignWeekSlots: %v", err)
	}
	// The timed meeting renders inside its day cell, never in a lane, so
	// the date-span event keeps slot 0 to itself.
	if len(ws.Segments) != 1 {
		t.Fatalf("got %d segments, want only the date span", len(ws.Segments))
	}
	seg := ws.Segments[0]
	if seg.UID != "offsite" || seg.Slot != 0 {
		t.Errorf("segment = %s slot %d, want offsite in slot 0", seg.UID, seg.Slot)
	}
	if ws.SlotCount != 1 {
		t.Errorf("SlotCount = %d, want 1", ws.SlotCount)
	}
}

func TestCollectSegments_TimedEventsExcluded(t *testing.T) {
	t.Parallel()

	g, err := grid.BuildMonthGrid(2024, time.March, time.Monday, grid.Date{})
	if err != nil {
		t.Fatalf("BuildMonthGrid: %v", err)
	}
	timed := span("standup", grid.Date{Year: 2024, Month: time.March, Day: 12}, grid.Date{Year: 2024, Month: time.March, Day: 12})
	st, _ := grid.NewTimeOfDay(9, 30)
	et, _ := grid.NewTimeOfDay(9, 45)
	timed.StartTime, timed.EndTime = &st, &et

	segments, err := CollectSegments(g, []event.TimelineEvent{timed})
	if err != nil {
		t.Fatalf("CollectSegments: %v", err)
	}
	if len(segments) != 0 {
		t.Fatalf("timed event produced %d segments, want 0", len(segments))
	}
}

func TestAssignWeekSlots_DuplicateUIDsDropped(t *testing.T) {
	t.Parallel()

	week := weekOf(t, 2024, time.March, 11)
	events := []event.TimelineEvent{
		span("dup", week[0], week[1]),
		span("dup", week[3], week[4]),
	}

	ws, err := AssignWeekSlots(week, events)
	if err != nil {
		t.Fatalf("AssignWeekSlots: %v", err)
	}
	if len(ws.Segments) != 1 {
		t.Fatalf("got %d segments for duplicated uid, want 1", len(ws.Segments))
	}
}

func TestAssignWeekSlots_MalformedEventRejected(t *testing.T) {
	t.Parallel()

	week := weekOf(t, 2024, time.March, 11)
	events := []event.TimelineEvent{
		span("ok", week[0], week[1]),
		span("broken", week[4], week[2]),
	}

	_, err := AssignWeekSlots(week, events)
	if err == nil {
		t.Fatal("AssignWeekSlots accepted an event ending before it starts")
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Errorf("error %q does not name the offending uid", err)
	}
}

func TestCollectSegments_CrossWeekEvent(t *testing.T) {
	t.Parallel()

	g, err := grid.BuildMonthGrid(2024, time.March, time.Monday, grid.Date{})
	if err != nil {
		t.Fatalf("BuildMonthGrid: %v", err)
	}

	// 2024-03-07 (Thu) through 2024-03-12 (Tue) crosses the row boundary
	// between the first and second weeks of the Monday-start grid.
	events := []event.TimelineEvent{
		span("x",
			grid.Date{Year: 2024, Month: time.March, Day: 7},
			grid.Date{Year: 2024, Month: time.March, Day: 12}),
	}

	segments, err := CollectSegments(g, events)
	if err != nil {
		t.Fatalf("CollectSegments: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2 rows", len(segments))
	}

	first, second := segments[0], segments[1]
	if first.Week+1 != second.Week {
		t.Fatalf("segments land in rows %d and %d, want adjacent", first.Week, second.Week)
	}
	if !first.StartsHere || first.EndsHere {
		t.Errorf("first segment flags: starts %v ends %v, want starts only", first.StartsHere, first.EndsHere)
	}
	if second.StartsHere || !second.EndsHere {
		t.Errorf("second segment flags: starts %v ends %v, want ends only", second.StartsHere, second.EndsHere)
	}
	if first.EndCol != 6 || second.StartCol != 0 {
		t.Errorf("continuation columns: first ends %d, second starts %d", first.EndCol, second.StartCol)
	}
	if !first.First || second.First {
		t.Errorf("title flags: first %v second %v, want title on first only", first.First, second.First)
	}
}

func TestCollectSegments_TitleOnceAcrossGrid(t *testing.T) {
	t.Parallel()

	g, err := grid.BuildMonthGrid(2024, time.March, time.Monday, grid.Date{})
	if err != nil {
		t.Fatalf("BuildMonthGrid: %v", err)
	}
	events := []event.TimelineEvent{
		span("three-weeks",
			grid.Date{Year: 2024, Month: time.March, Day: 5},
			grid.Date{Year: 2024, Month: time.March, Day: 20}),
	}

	segments, err := CollectSegments(g, events)
	if err != nil {
		t.Fatalf("CollectSegments: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(segments))
	}
	titles := 0
	for _, s := range segments {
		if s.First {
			titles++
		}
	}
	if titles != 1 {
		t.Errorf("title flag set on %d segments, want exactly 1", titles)
	}
	if !segments[0].First {
		t.Error("title flag missing from the earliest segment")
	}
}

func TestCollectSegments_EmptyGrid(t *testing.T) {
	t.Parallel()

	g, err := grid.BuildMonthGrid(2024, time.March, time.Monday, grid.Date{})
	if err != nil {
		t.Fatalf("BuildMonthGrid: %v", err)
	}
	segments, err := CollectSegments(g, nil)
	if err != nil {
		t.Fatalf("CollectSegments: %v", err)
	}
	if len(segments) != 0 {
		t.Fatalf("got %d segments for no events, want 0", len(segments))
	}
}
