package store

import (
	"sync"
	"time"

	"weatherdash/internal/common"
	"weatherdash/internal/weather"
)

type cachedSnapshot struct {
	snap     *weather.Snapshot
	storedAt time.Time
}

// SnapshotCache holds the latest refreshed snapshot per favorited city,
// keyed case-insensitively. It only feeds the favorites-list summaries; the
// aggregation endpoint itself is never served from it.
type SnapshotCache struct {
	mu     sync.RWMutex
	data   map[string]cachedSnapshot
	maxAge time.Duration
}

// NewSnapshotCache creates a cache whose entries expire after maxAge.
// maxAge <= 0 means entries never expire.
func NewSnapshotCache(maxAge time.Duration) *SnapshotCache {
	return &SnapshotCache{
		data:   make(map[string]cachedSnapshot),
		maxAge: maxAge,
	}
}

// Put stores the latest snapshot for a city, replacing any previous one.
func (c *SnapshotCache) Put(city string, snap *weather.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[common.NormalizeCity(city)] = cachedSnapshot{
		snap:     snap,
		storedAt: time.Now(),
	}
}

// Latest returns the freshest snapshot for a city, if one exists and has not
// aged out.
func (c *SnapshotCache) Latest(city string) (*weather.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[common.NormalizeCity(city)]
	if !ok {
		return nil, false
	}
	if c.maxAge > 0 && time.Since(entry.storedAt) > c.maxAge {
		return nil, false
	}
	return entry.snap, true
}
