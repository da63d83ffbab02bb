package gesture

import (
	"log/slog"

	"github.com/example/calendar-engine/internal/grid"
)

// selectionDrag carries the full payload of an in-progress drag. The
// Selection machine holds it behind a nil-able pointer so the idle state
// cannot carry stale endpoints.
type selectionDrag struct {
	start DatePoint
	end   DatePoint
}

// Selection tracks a click-and-drag range selection across grid cells.
// The zero value is an idle machine ready for use.
type Selection struct {
	logger *slog.Logger
	drag   *selectionDrag
}

// NewSelection returns an idle selection machine. The logger is optional
// and only used for debug transition logs.
func NewSelection(logger *slog.Logger) *Selection {
	return &Selection{logger: logger}
}

// Active reports whether a drag is in progress.
func (s *Selection) Active() bool {
	return s != nil && s.drag != nil
}

// Start begins a new selection at the given point, discarding any drag
// already in progress.
func (s *Selection) Start(p DatePoint) {
	s.debug("selection start", "point", p.String())
	s.drag = &selectionDrag{start: p, end: p}
}

// Update moves the selection's end point during a drag. A stray move
// while idle (for example one delivered after release) has no effect.
func (s *Selection) Update(p DatePoint) {
	if s.drag == nil {
		return
	}
	s.debug("selection update", "point", p.String())
	s.drag.end = p
}

// End finishes the drag and returns the normalized range. The boolean is
// false when the machine was idle. The machine is idle afterwards.
func (s *Selection) End() (SelectionRange, bool) {
	if s.drag == nil {
		return SelectionRange{}, false
	}
	r := Normalize(s.drag.start, s.drag.end)
	s.debug("selection end", "start", r.Start.String(), "end", r.End.String())
	s.drag = nil
	return r, true
}

// Cancel discards the pending selection and returns to idle.
func (s *Selection) Cancel() {
	if s.drag == nil {
		return
	}
	s.debug("selection cancel")
	s.drag = nil
}

// Range returns the current normalized range, valid mid-drag so hosts
// can highlight cells live. The boolean is false while idle.
func (s *Selection) Range() (SelectionRange, bool) {
	if s.drag == nil {
		return SelectionRange{}, false
	}
	return Normalize(s.drag.start, s.drag.end), true
}

// Contains reports whether d lies inside the current selection, even
// mid-drag. Always false while idle.
func (s *Selection) Contains(d grid.Date) bool {
	r, ok := s.Range()
	return ok && r.Contains(d)
}

// ContainsHour reports whether the hour cell at (d, hour) intersects the
// current selection. Always false while idle.
func (s *Selection) ContainsHour(d grid.Date, hour int) bool {
	r, ok := s.Range()
	return ok && r.ContainsHour(d, hour)
}

func (s *Selection) debug(msg string, attrs ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, attrs...)
	}
}
