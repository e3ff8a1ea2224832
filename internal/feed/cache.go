package feed

import (
	"sync"
	"time"
)

// RenderCache holds rendered global-feed pages for a bounded time.
// Staleness inside the TTL window is deliberate: a deletion is allowed to
// stay visible in the cached render until the entry expires or Invalidate
// is called. Keyed by page number.
type RenderCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[int]cacheEntry

	now func() time.Time // overridable in tests
}

type cacheEntry struct {
	body     []byte
	storedAt time.Time
}

// NewRenderCache returns a cache with the given TTL. A non-positive TTL
// disables caching: Get never hits.
func NewRenderCache(ttl time.Duration) *RenderCache {
	return &RenderCache{
		ttl:     ttl,
		entries: map[int]cacheEntry{},
		now:     time.Now,
	}
}

func (c *RenderCache) Get(page int) ([]byte, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[page]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, page)
		return nil, false
	}
	return entry.body, true
}

func (c *RenderCache) Set(page int, body []byte) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[page] = cacheEntry{body: body, storedAt: c.now()}
}

// Invalidate drops every cached page.
func (c *RenderCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[int]cacheEntry{}
}
