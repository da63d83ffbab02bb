package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/example/calendar-engine/internal/event"
	"github.com/example/calendar-engine/internal/gesture"
	"github.com/example/calendar-engine/internal/grid"
	"github.com/example/calendar-engine/internal/recurrence"
)

// ErrUnknownSource is returned when a source ID is not registered.
var ErrUnknownSource = errors.New("source: unknown source")

// Manager owns the configured sources and presents their merged,
// expanded event stream to the views.
type Manager struct {
	logger   *slog.Logger
	expander *recurrence.Expander

	mu      sync.RWMutex
	sources []Source

	cronMu sync.Mutex
	sched  *cron.Cron
}

// NewManager constructs an empty manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		logger:   logger,
		expander: recurrence.NewExpander(logger),
	}
}

// Register adds a source. Registration order is preserved for display.
func (m *Manager) Register(s Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = append(m.sources, s)
}

// Sources returns a snapshot of the registered source descriptions.
func (m *Manager) Sources() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]Info, len(m.sources))
	for i, s := range m.sources {
		infos[i] = s.Info()
	}
	return infos
}

// SetEnabled toggles a source by ID.
func (m *Manager) SetEnabled(id string, enabled bool) error {
	s, err := m.byID(id)
	if err != nil {
		return err
	}
	s.SetEnabled(enabled)
	return nil
}

// EventsInRange merges events from every enabled source across the
// inclusive window, expanding recurring events into occurrences. The
// result is sorted by start date, then UID, so repeated calls over the
// same data compare equal.
func (m *Manager) EventsInRange(ctx context.Context, from, to grid.Date) ([]event.TimelineEvent, error) {
	m.mu.RLock()
	sources := make([]Source, len(m.sources))
	copy(sources, m.sources)
	m.mu.RUnlock()

	var merged []event.TimelineEvent
	for _, s := range sources {
		if !s.Info().Enabled {
			continue
		}
		events, err := s.FetchEvents(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", s.Info().ID, err)
		}
		merged = append(merged, m.expander.ExpandAll(events, from, to)...)
	}

	sort.Slice(merged, func(i, j int) bool {
		if c := merged[i].Start.Compare(merged[j].Start); c != 0 {
			return c < 0
		}
		return merged[i].UID < merged[j].UID
	})
	return merged, nil
}

// EventsForGrid returns the expanded events covering a month grid,
// including the padding days of neighbouring months.
func (m *Manager) EventsForGrid(ctx context.Context, g grid.MonthGrid) ([]event.TimelineEvent, error) {
	if len(g.Weeks) == 0 {
		return nil, nil
	}
	first := g.Weeks[0].Days[0].Date
	last := g.Weeks[len(g.Weeks)-1].Days[6].Date
	return m.EventsInRange(ctx, first, last)
}

// AddEvent stores a new event in the identified writable source.
func (m *Manager) AddEvent(ctx context.Context, sourceID string, e event.TimelineEvent) error {
	s, err := m.byID(sourceID)
	if err != nil {
		return err
	}
	if !s.SupportsWrite() {
		return fmt.Errorf("%w: %s", ErrReadOnly, sourceID)
	}
	return s.AddEvent(ctx, e)
}

// DeleteEvent removes an event by UID from whichever writable source
// holds it.
func (m *Manager) DeleteEvent(ctx context.Context, uid string) error {
	s, _, err := m.locate(ctx, uid)
	if err != nil {
		return err
	}
	return s.DeleteEvent(ctx, uid)
}

// ApplyMove commits a finished drag: it locates the moved event, shifts
// it by the drag offset and stores the result. Occurrence UIDs of the
// form <uid>@<date> resolve to their base recurring event, which is
// rejected here since moving one occurrence would silently rewrite the
// whole series.
func (m *Manager) ApplyMove(ctx context.Context, move gesture.Move) (event.TimelineEvent, error) {
	s, e, err := m.locate(ctx, move.UID)
	if err != nil {
		return event.TimelineEvent{}, err
	}
	if e.Recurring() {
		return event.TimelineEvent{}, fmt.Errorf("source: event %s recurs; move a single occurrence by editing the series", e.UID)
	}

	moved := event.ApplyMove(e, move)
	if err := s.UpdateEvent(ctx, moved); err != nil {
		return event.TimelineEvent{}, err
	}
	m.logger.Info("event moved",
		"uid", moved.UID,
		"from", e.Start.String(),
		"to", moved.Start.String())
	return moved, nil
}

// SyncAll refreshes every enabled source. Individual failures are
// logged and collected; the remaining sources still sync.
func (m *Manager) SyncAll(ctx context.Context) error {
	m.mu.RLock()
	sources := make([]Source, len(m.sources))
	copy(sources, m.sources)
	m.mu.RUnlock()

	var errs []error
	for _, s := range sources {
		if !s.Info().Enabled {
			continue
		}
		if err := s.Sync(ctx); err != nil {
			m.logger.Warn("source sync failed", "source", s.Info().ID, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StartAutoSync schedules SyncAll on the given cron expression. Calling
// it again replaces the previous schedule.
func (m *Manager) StartAutoSync(ctx context.Context, spec string) error {
	m.cronMu.Lock()
	defer m.cronMu.Unlock()

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		syncCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := m.SyncAll(syncCtx); err != nil {
			m.logger.Warn("scheduled sync finished with errors", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("source: bad sync schedule %q: %w", spec, err)
	}

	if m.sched != nil {
		m.sched.Stop()
	}
	m.sched = c
	c.Start()
	m.logger.Info("auto sync started", "schedule", spec)
	return nil
}

// Close stops the sync schedule and closes every source.
func (m *Manager) Close() error {
	m.cronMu.Lock()
	if m.sched != nil {
		m.sched.Stop()
		m.sched = nil
	}
	m.cronMu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	var errs []error
	for _, s := range m.sources {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) byID(id string) (Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sources {
		if s.Info().ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSource, id)
}

// locate finds the writable source holding the event with the given
// UID. Occurrence UIDs resolve to their base event.
func (m *Manager) locate(ctx context.Context, uid string) (Source, event.TimelineEvent, error) {
	base := baseUID(uid)

	m.mu.RLock()
	sources := make([]Source, len(m.sources))
	copy(sources, m.sources)
	m.mu.RUnlock()

	window := grid.Date{Year: 1, Month: time.January, Day: 1}
	windowEnd := grid.Date{Year: 9999, Month: time.December, Day: 31}

	for _, s := range sources {
		if !s.SupportsWrite() {
			continue
		}
		events, err := s.FetchEvents(ctx, window, windowEnd)
		if err != nil {
			return nil, event.TimelineEvent{}, fmt.Errorf("source %s: %w", s.Info().ID, err)
		}
		for _, e := range events {
			if e.UID == base {
				return s, e, nil
			}
		}
	}
	return nil, event.TimelineEvent{}, fmt.Errorf("%w: event %s", ErrNotFound, uid)
}

// baseUID strips the occurrence suffix from a derived UID.
func baseUID(uid string) string {
	for i := len(uid) - 1; i >= 0; i-- {
		if uid[i] == '@' {
			return uid[:i]
		}
	}
	return uid
}
