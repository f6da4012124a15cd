package view

import (
	"sync"
	"time"
)

// Cache is a small TTL + capacity bounded cache for resolved display
// names. It replaces what used to be a module-level lookup table: the
// composer owns the instance and injects lifetime policy.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	now     func() time.Time
	entries map[int]cacheEntry
}

type cacheEntry struct {
	name    string
	expires time.Time
}

func NewCache(ttl time.Duration, max int, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	if max < 1 {
		max = 1
	}
	return &Cache{
		ttl:     ttl,
		max:     max,
		now:     now,
		entries: map[int]cacheEntry{},
	}
}

func (c *Cache) Get(id int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return "", false
	}
	if c.now().After(e.expires) {
		delete(c.entries, id)
		return "", false
	}
	return e.name, true
}

func (c *Cache) Put(id int, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.max {
		c.evictLocked()
	}
	c.entries[id] = cacheEntry{name: name, expires: c.now().Add(c.ttl)}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked drops expired entries first, then the entry closest to
// expiry if the cache is still full.
func (c *Cache) evictLocked() {
	now := c.now()
	for id, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, id)
		}
	}
	if len(c.entries) < c.max {
		return
	}
	oldestID := 0
	var oldest time.Time
	first := true
	for id, e := range c.entries {
		if first || e.expires.Before(oldest) {
			oldestID, oldest = id, e.expires
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestID)
	}
}
