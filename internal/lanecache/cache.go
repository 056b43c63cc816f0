// Package lanecache implements a per-route, per-slot TTL cache that
// lets the assembler reuse the previous successful lane snapshot when
// live telemetry is missing.
package lanecache

import (
	"sync"
	"time"

	"github.com/abw750/ferryAPI3/internal/models"
)

// TTL is how long a cached lane remains usable after it was observed.
const TTL = 10 * time.Minute

type key struct {
	routeID int
	slot    models.Slot
}

type entry struct {
	lane         models.Lane
	observedTime time.Time
}

// Cache is a process-wide, mutex-guarded map. All updates write a fresh
// entry into the slot; a single mutex per map is sufficient since
// updates happen inside one route's assembly.
type Cache struct {
	mu      sync.RWMutex
	entries map[key]entry
}

// New builds an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[key]entry)}
}

// Get returns the cached lane for (routeID, slot) if it was observed
// within TTL of now. Freshness is checked at read time; there is no
// separate eviction sweep.
func (c *Cache) Get(routeID int, slot models.Slot, now time.Time) (models.Lane, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key{routeID, slot}]
	if !ok {
		return models.Lane{}, false
	}
	if now.Sub(e.observedTime) > TTL {
		return models.Lane{}, false
	}
	return e.lane, true
}

// Put writes a shallow copy of lane as the last-good observation for
// (routeID, slot) at observedTime, so callers cannot mutate the cache
// through the lane they handed in.
func (c *Cache) Put(routeID int, slot models.Slot, lane models.Lane, observedTime time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key{routeID, slot}] = entry{lane: lane, observedTime: observedTime}
}
