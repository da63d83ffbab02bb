// Package local implements the writable on-disk calendar source backed
// by SQLite.
package local

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/example/calendar-engine/internal/event"
	"github.com/example/calendar-engine/internal/grid"
	"github.com/example/calendar-engine/internal/source"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	uid        TEXT PRIMARY KEY,
	summary    TEXT NOT NULL,
	location   TEXT NOT NULL DEFAULT '',
	start_date TEXT NOT NULL,
	end_date   TEXT NOT NULL,
	all_day    INTEGER NOT NULL DEFAULT 0,
	start_time TEXT,
	end_time   TEXT,
	rrule      TEXT NOT NULL DEFAULT '',
	exdates    TEXT NOT NULL DEFAULT '',
	CHECK (end_date >= start_date)
);
CREATE INDEX IF NOT EXISTS idx_events_span ON events (start_date, end_date);
`

// Calendar is a local SQLite-backed source. All writes land directly in
// the database, so Sync is a no-op.
type Calendar struct {
	db *sql.DB

	mu   sync.RWMutex
	info source.Info
}

// Open opens or creates the calendar database at path and ensures the
// schema exists. Use ":memory:" for an ephemeral store.
func Open(path string, info source.Info) (*Calendar, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("local: open %s: %w", path, err)
	}
	// modernc.org/sqlite serializes access per connection; a single
	// connection avoids SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("local: init schema: %w", err)
	}

	info.Type = source.TypeLocal
	return &Calendar{db: db, info: info}, nil
}

// Info returns the source description.
func (c *Calendar) Info() source.Info {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.info
}

// SetEnabled toggles whether the manager merges this source's events.
func (c *Calendar) SetEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.info.Enabled = enabled
}

// SupportsWrite reports that local calendars accept writes.
func (c *Calendar) SupportsWrite() bool { return true }

// FetchEvents returns events intersecting the inclusive window. The
// date columns hold ISO "2006-01-02" strings, so lexicographic SQL
// comparison matches date order.
func (c *Calendar) FetchEvents(ctx context.Context, from, to grid.Date) ([]event.TimelineEvent, error) {
	const query = `
		SELECT uid, summary, location, start_date, end_date, all_day, start_time, end_time, rrule, exdates
		FROM events
		WHERE (end_date >= ? AND start_date <= ?) OR rrule != ''
		ORDER BY start_date, uid
	`
	rows, err := c.db.QueryContext(ctx, query, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("local: fetch events: %w", err)
	}
	defer rows.Close()

	var events []event.TimelineEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("local: fetch events: %w", err)
	}
	return events, nil
}

// AddEvent inserts a validated event.
func (c *Calendar) AddEvent(ctx context.Context, e event.TimelineEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}
	const query = `
		INSERT INTO events (uid, summary, location, start_date, end_date, all_day, start_time, end_time, rrule, exdates)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := c.db.ExecContext(ctx, query,
		e.UID, e.Summary, e.Location,
		e.Start.String(), e.End.String(), boolToInt(e.AllDay),
		timeColumn(e.StartTime), timeColumn(e.EndTime),
		e.RRule, joinExDates(e.ExDates),
	)
	if err != nil {
		return mapError(err)
	}
	return nil
}

// UpdateEvent replaces the stored event with the same UID.
func (c *Calendar) UpdateEvent(ctx context.Context, e event.TimelineEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}
	const query = `
		UPDATE events
		SET summary = ?, location = ?, start_date = ?, end_date = ?, all_day = ?,
		    start_time = ?, end_time = ?, rrule = ?, exdates = ?
		WHERE uid = ?
	`
	res, err := c.db.ExecContext(ctx, query,
		e.Summary, e.Location,
		e.Start.String(), e.End.String(), boolToInt(e.AllDay),
		timeColumn(e.StartTime), timeColumn(e.EndTime),
		e.RRule, joinExDates(e.ExDates),
		e.UID,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("local: update event: %w", err)
	}
	if affected == 0 {
		return source.ErrNotFound
	}
	return nil
}

// DeleteEvent removes the event with the given UID.
func (c *Calendar) DeleteEvent(ctx context.Context, uid string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM events WHERE uid = ?`, uid)
	if err != nil {
		return mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("local: delete event: %w", err)
	}
	if affected == 0 {
		return source.ErrNotFound
	}
	return nil
}

// Sync is a no-op: local writes are already durable.
func (c *Calendar) Sync(ctx context.Context) error { return nil }

// Close releases the database handle.
func (c *Calendar) Close() error {
	return c.db.Close()
}

func scanEvent(rows *sql.Rows) (event.TimelineEvent, error) {
	var (
		e                  event.TimelineEvent
		startDate, endDate string
		allDay             int
		startTime, endTime sql.NullString
		exdates            string
	)
	if err := rows.Scan(&e.UID, &e.Summary, &e.Location, &startDate, &endDate,
		&allDay, &startTime, &endTime, &e.RRule, &exdates); err != nil {
		return event.TimelineEvent{}, fmt.Errorf("local: scan event: %w", err)
	}

	var err error
	if e.Start, err = grid.ParseDate(startDate); err != nil {
		return event.TimelineEvent{}, fmt.Errorf("local: event %s: %w", e.UID, err)
	}
	if e.End, err = grid.ParseDate(endDate); err != nil {
		return event.TimelineEvent{}, fmt.Errorf("local: event %s: %w", e.UID, err)
	}
	e.AllDay = allDay != 0

	if startTime.Valid {
		t, err := grid.ParseTimeOfDay(startTime.String)
		if err != nil {
			return event.TimelineEvent{}, fmt.Errorf("local: event %s: %w", e.UID, err)
		}
		e.StartTime = &t
	}
	if endTime.Valid {
		t, err := grid.ParseTimeOfDay(endTime.String)
		if err != nil {
			return event.TimelineEvent{}, fmt.Errorf("local: event %s: %w", e.UID, err)
		}
		e.EndTime = &t
	}

	if exdates != "" {
		for _, part := range strings.Split(exdates, ",") {
			d, err := grid.ParseDate(part)
			if err != nil {
				return event.TimelineEvent{}, fmt.Errorf("local: event %s exdate: %w", e.UID, err)
			}
			e.ExDates = append(e.ExDates, d)
		}
	}
	return e, nil
}

func mapError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint"):
		return fmt.Errorf("%w: %v", source.ErrDuplicate, err)
	case strings.Contains(msg, "CHECK constraint"):
		return &event.ValidationError{FieldErrors: map[string]string{
			"end": "end date before start date",
		}}
	default:
		return fmt.Errorf("local: %w", err)
	}
}

func timeColumn(t *grid.TimeOfDay) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.String(), Valid: true}
}

func joinExDates(dates []grid.Date) string {
	parts := make([]string, len(dates))
	for i, d := range dates {
		parts[i] = d.String()
	}
	return strings.Join(parts, ",")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
