package server

import (
	"sync"
	"time"

	"github.com/mj1618/ai-testing-tool/internal/model"
)

// SnapshotCache holds the last normalized screen for a short TTL so repeated
// reads between actions do not hit the device.
type SnapshotCache struct {
	mu        sync.Mutex
	snapshot  *model.Snapshot
	timestamp time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewSnapshotCache creates a new cache. A ttl of 0 disables caching.
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{ttl: ttl, now: time.Now}
}

// Get returns the cached snapshot if within TTL, otherwise reads fresh.
// The caller must hold the session mutex.
func (c *SnapshotCache) Get(read func() (*model.Snapshot, error)) (*model.Snapshot, error) {
	if c.ttl == 0 {
		return read()
	}

	c.mu.Lock()
	if c.snapshot != nil && c.now().Sub(c.timestamp) < c.ttl {
		snap := c.snapshot
		c.mu.Unlock()
		return snap, nil
	}
	c.mu.Unlock()

	snap, err := read()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.snapshot = snap
	c.timestamp = c.now()
	c.mu.Unlock()

	return snap, nil
}

// Put stores a snapshot taken elsewhere, e.g. right after an action.
func (c *SnapshotCache) Put(snap *model.Snapshot) {
	if c.ttl == 0 || snap == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = snap
	c.timestamp = c.now()
}

// Invalidate clears the cache.
func (c *SnapshotCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
}
