// Package cache holds the latest published scrape snapshot in memory.
package cache

import (
	"sync"
	"time"

	"milo-tracker/pkg/models"
)

// DefaultTTL bounds snapshot staleness when no TTL is configured.
const DefaultTTL = time.Hour

// Cache stores at most one snapshot. Writers publish a fully-built snapshot
// with Replace; readers never observe a partially populated one.
type Cache struct {
	mu   sync.RWMutex
	snap *models.Snapshot
	ttl  time.Duration
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{ttl: ttl}
}

// Get returns the last published snapshot, stale or not. Callers must not
// mutate it.
func (c *Cache) Get() (*models.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return nil, false
	}
	return c.snap, true
}

// Replace atomically swaps in a new snapshot.
func (c *Cache) Replace(snap *models.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap = snap
}

// IsFresh reports whether a snapshot exists and its age is strictly below
// the TTL.
func (c *Cache) IsFresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap != nil && time.Since(c.snap.LastUpdated) < c.ttl
}

// Age returns how long ago the snapshot was published.
func (c *Cache) Age() (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap == nil {
		return 0, false
	}
	return time.Since(c.snap.LastUpdated), true
}

func (c *Cache) TTL() time.Duration {
	return c.ttl
}
