package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator mints sequential event identifiers so tests can assert on
// exact UIDs instead of random uuids.
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewIDGenerator constructs a generator yielding "<prefix>-1",
// "<prefix>-2" and so on. An empty prefix defaults to "uid".
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "uid"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}
