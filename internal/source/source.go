// Package source defines the calendar backend abstraction: a Source
// stores or serves timeline events, and the Manager merges events from
// every enabled source into the views.
package source

import (
	"context"
	"errors"

	"github.com/example/calendar-engine/internal/event"
	"github.com/example/calendar-engine/internal/grid"
)

var (
	// ErrNotFound is returned when the requested event does not exist.
	ErrNotFound = errors.New("source: event not found")
	// ErrDuplicate is returned when adding an event whose UID already exists.
	ErrDuplicate = errors.New("source: duplicate event uid")
	// ErrReadOnly is returned by write operations on read-only sources.
	ErrReadOnly = errors.New("source: source is read only")
)

// Type identifies the kind of backend behind a source.
type Type string

const (
	// TypeLocal is an on-disk store owned by this process.
	TypeLocal Type = "local"
	// TypeICS is a remote ICS subscription, read only.
	TypeICS Type = "ics"
)

// Info describes a configured source.
type Info struct {
	ID      string
	Name    string
	Type    Type
	Color   string
	Enabled bool
}

// Source is one calendar backend. Read-only backends return ErrReadOnly
// from every write operation and false from SupportsWrite.
type Source interface {
	Info() Info
	SetEnabled(enabled bool)
	SupportsWrite() bool

	// FetchEvents returns the source's events whose date span intersects
	// the inclusive window [from, to]. Recurring events are returned
	// unexpanded, rule and all.
	FetchEvents(ctx context.Context, from, to grid.Date) ([]event.TimelineEvent, error)

	AddEvent(ctx context.Context, e event.TimelineEvent) error
	UpdateEvent(ctx context.Context, e event.TimelineEvent) error
	DeleteEvent(ctx context.Context, uid string) error

	// Sync refreshes the source from its backing store or feed.
	Sync(ctx context.Context) error

	Close() error
}
