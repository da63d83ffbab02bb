package grid

import (
	"sync"
	"time"
)

type monthKey struct {
	year  int
	month time.Month
}

// Cache stores built month grids keyed by (year, month) so period
// navigation never rebuilds a grid it has already produced. Entries are
// populated lazily and evicted only through an explicit Trim call: the
// host UI, not the cache, knows which periods must stay warm (the
// current month plus its look-ahead/look-behind window).
type Cache struct {
	mu       sync.RWMutex
	firstDay time.Weekday
	now      func() time.Time
	entries  map[monthKey]MonthGrid
	current  monthKey
}

// CacheStats reports cache occupancy for diagnostics.
type CacheStats struct {
	Entries      int
	CurrentYear  int
	CurrentMonth time.Month
}

// NewCache constructs a cache building grids with the given first day of
// week. When now is nil, time.Now is used for the today marker.
func NewCache(firstDay time.Weekday, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		firstDay: firstDay,
		now:      now,
		entries:  make(map[monthKey]MonthGrid),
	}
}

// SetCurrent marks (year, month) as the displayed month, building its
// grid if it is not cached yet.
func (c *Cache) SetCurrent(year int, month time.Month) (MonthGrid, error) {
	g, err := c.Month(year, month)
	if err != nil {
		return MonthGrid{}, err
	}
	c.mu.Lock()
	c.current = monthKey{year: year, month: month}
	c.mu.Unlock()
	return g, nil
}

// Current returns the grid for the month last passed to SetCurrent. The
// boolean is false when SetCurrent has never been called.
func (c *Cache) Current() (MonthGrid, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.entries[c.current]
	return g, ok
}

// Month returns the grid for (year, month), building and caching it on
// first access.
func (c *Cache) Month(year int, month time.Month) (MonthGrid, error) {
	key := monthKey{year: year, month: month}

	c.mu.RLock()
	g, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return g, nil
	}

	g, err := BuildMonthGrid(year, month, c.firstDay, DateOf(c.now()))
	if err != nil {
		return MonthGrid{}, err
	}

	c.mu.Lock()
	c.entries[key] = g
	c.mu.Unlock()
	return g, nil
}

// PrecacheSurrounding builds the given number of months before and after
// the current month so navigation stays warm.
func (c *Cache) PrecacheSurrounding(before, after int) error {
	c.mu.RLock()
	current := c.current
	c.mu.RUnlock()

	for i := 1; i <= before; i++ {
		key := addMonths(current, -i)
		if _, err := c.Month(key.year, key.month); err != nil {
			return err
		}
	}
	for i := 1; i <= after; i++ {
		key := addMonths(current, i)
		if _, err := c.Month(key.year, key.month); err != nil {
			return err
		}
	}
	return nil
}

// Trim drops every cached month further than keepRadius months from the
// current month. Eviction only ever happens here; the cache never
// discards entries on its own.
func (c *Cache) Trim(keepRadius int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	keep := make(map[monthKey]struct{}, 2*keepRadius+1)
	keep[c.current] = struct{}{}
	for i := 1; i <= keepRadius; i++ {
		keep[addMonths(c.current, -i)] = struct{}{}
		keep[addMonths(c.current, i)] = struct{}{}
	}

	for key := range c.entries {
		if _, ok := keep[key]; !ok {
			delete(c.entries, key)
		}
	}
}

// Stats returns current cache occupancy.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Entries:      len(c.entries),
		CurrentYear:  c.current.year,
		CurrentMonth: c.current.month,
	}
}

// addMonths shifts a month key by n months, carrying across years.
func addMonths(key monthKey, n int) monthKey {
	total := key.year*12 + int(key.month) - 1 + n
	return monthKey{year: total / 12, month: time.Month(total%12 + 1)}
}
