package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// pageCache is an owner-keyed TTL cache of fetch results. It is an explicit
// object handed into the pipeline, never ambient state, so tests and
// concurrent imports can each carry their own.
type pageCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[uuid.UUID]pageCacheEntry
}

type pageCacheEntry struct {
	result    *FetchResult
	expiresAt time.Time
}

// NewPageCache creates a fetch-result cache with the given TTL.
func NewPageCache(ttl time.Duration) PageCacheInterface {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &pageCache{
		ttl:     ttl,
		entries: make(map[uuid.UUID]pageCacheEntry),
	}
}

func (c *pageCache) Get(ownerID uuid.UUID) (*FetchResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[ownerID]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.Invalidate(ownerID)
		return nil, false
	}
	return entry.result, true
}

func (c *pageCache) Set(ownerID uuid.UUID, result *FetchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ownerID] = pageCacheEntry{
		result:    result,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *pageCache) Invalidate(ownerID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, ownerID)
}
