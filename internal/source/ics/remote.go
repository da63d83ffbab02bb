package ics

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/example/calendar-engine/internal/event"
	"github.com/example/calendar-engine/internal/grid"
	"github.com/example/calendar-engine/internal/source"
)

// Remote is a read-only calendar source fed by an ICS subscription.
// Events live in memory and are replaced wholesale on each Sync.
type Remote struct {
	url     string
	fetcher *Fetcher
	logger  *slog.Logger

	mu     sync.RWMutex
	info   source.Info
	events []event.TimelineEvent
}

// NewRemote constructs a remote source for the given feed URL. The
// client is optional. No fetch happens until the first Sync.
func NewRemote(info source.Info, feedURL string, client *http.Client, logger *slog.Logger) *Remote {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	info.Type = source.TypeICS
	return &Remote{
		url:     feedURL,
		fetcher: NewFetcher(client),
		logger:  logger,
		info:    info,
	}
}

// Info returns the source description.
func (r *Remote) Info() source.Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.info
}

// SetEnabled toggles whether the manager merges this source's events.
func (r *Remote) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.info.Enabled = enabled
}

// SupportsWrite reports that subscription feeds are read only.
func (r *Remote) SupportsWrite() bool { return false }

// FetchEvents returns the synced events intersecting the window.
// Recurring events are always included for downstream expansion.
func (r *Remote) FetchEvents(ctx context.Context, from, to grid.Date) ([]event.TimelineEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]event.TimelineEvent, 0, len(r.events))
	for _, e := range r.events {
		if !e.Recurring() && (e.End.Before(from) || e.Start.After(to)) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// AddEvent always fails: feeds are read only.
func (r *Remote) AddEvent(ctx context.Context, e event.TimelineEvent) error {
	return fmt.Errorf("%w: %s", source.ErrReadOnly, r.info.ID)
}

// UpdateEvent always fails: feeds are read only.
func (r *Remote) UpdateEvent(ctx context.Context, e event.TimelineEvent) error {
	return fmt.Errorf("%w: %s", source.ErrReadOnly, r.info.ID)
}

// DeleteEvent always fails: feeds are read only.
func (r *Remote) DeleteEvent(ctx context.Context, uid string) error {
	return fmt.Errorf("%w: %s", source.ErrReadOnly, r.info.ID)
}

// Sync fetches the feed and replaces the in-memory event set. An
// unchanged feed (HTTP 304) still reparses the cached body, which keeps
// Sync idempotent and cheap.
func (r *Remote) Sync(ctx context.Context) error {
	body, fromCache, err := r.fetcher.Fetch(ctx, r.url)
	if err != nil {
		return fmt.Errorf("ics: sync %s: %w", r.info.ID, err)
	}

	events, err := Parse(r.info.ID, body, r.logger)
	if err != nil {
		return fmt.Errorf("ics: sync %s: %w", r.info.ID, err)
	}

	r.mu.Lock()
	r.events = events
	r.mu.Unlock()

	r.logger.Info("ics feed synced",
		"calendar", r.info.ID,
		"url", RedactURL(r.url),
		"events", len(events),
		"from_cache", fromCache)
	return nil
}

// Close releases nothing: the source holds no persistent resources.
func (r *Remote) Close() error { return nil }
