package gesture

import "log/slog"

// Move is the committed outcome of dragging an event to a new cell. The
// caller applies it by shifting the event's stored start and end by the
// same offset, preserving duration; the machine itself never mutates
// event data.
type Move struct {
	UID    string
	Origin DatePoint
	Target DatePoint
}

// eventDragState carries the full payload of an in-progress event drag.
type eventDragState struct {
	uid    string
	origin DatePoint
	target DatePoint
}

// EventDrag tracks dragging an existing event to a new cell or time.
// The zero value is an idle machine ready for use.
type EventDrag struct {
	logger *slog.Logger
	state  *eventDragState
}

// NewEventDrag returns an idle drag machine. The logger is optional and
// only used for debug transition logs.
func NewEventDrag(logger *slog.Logger) *EventDrag {
	return &EventDrag{logger: logger}
}

// Active reports whether an event drag is in progress.
func (d *EventDrag) Active() bool {
	return d != nil && d.state != nil
}

// DraggingUID returns the UID of the event being dragged. The boolean is
// false while idle.
func (d *EventDrag) DraggingUID() (string, bool) {
	if d.state == nil {
		return "", false
	}
	return d.state.uid, true
}

// Target returns the current drag target. The boolean is false while idle.
func (d *EventDrag) Target() (DatePoint, bool) {
	if d.state == nil {
		return DatePoint{}, false
	}
	return d.state.target, true
}

// Start begins dragging the identified event from origin, discarding any
// drag already in progress.
func (d *EventDrag) Start(uid string, origin DatePoint) {
	d.debug("event drag start", "uid", uid, "origin", origin.String())
	d.state = &eventDragState{uid: uid, origin: origin, target: origin}
}

// Update replaces the drag target as the pointer enters new cells. A
// stray move while idle has no effect.
func (d *EventDrag) Update(p DatePoint) {
	if d.state == nil {
		return
	}
	d.debug("event drag update", "uid", d.state.uid, "target", p.String())
	d.state.target = p
}

// End finishes the drag. It returns the move only when the target
// differs from the origin by date, or by time when both points carry
// one; a release without net movement is a plain click on the event, not
// a move, and yields ok == false. The machine is idle afterwards.
func (d *EventDrag) End() (Move, bool) {
	if d.state == nil {
		return Move{}, false
	}
	state := d.state
	d.state = nil

	if !pointsDiffer(state.origin, state.target) {
		d.debug("event drag end without movement", "uid", state.uid)
		return Move{}, false
	}

	d.debug("event drag commit", "uid", state.uid, "origin", state.origin.String(), "target", state.target.String())
	return Move{UID: state.uid, Origin: state.origin, Target: state.target}, true
}

// Cancel discards the pending move and returns to idle.
func (d *EventDrag) Cancel() {
	if d.state == nil {
		return
	}
	d.debug("event drag cancel", "uid", d.state.uid)
	d.state = nil
}

// pointsDiffer reports whether two points name different grid cells:
// different dates always differ, and times are compared only when both
// points carry one.
func pointsDiffer(a, b DatePoint) bool {
	if a.Date != b.Date {
		return true
	}
	if a.Time != nil && b.Time != nil {
		return a.Time.Compare(*b.Time) != 0
	}
	return false
}

func (d *EventDrag) debug(msg string, attrs ...any) {
	if d.logger != nil {
		d.logger.Debug(msg, attrs...)
	}
}
