package aws

import (
	"sync"
	"time"
)

type cacheEntry struct {
	value    interface{}
	expires  time.Time
	inserted time.Time
}

// ttlCache is a small expiring cache for provider descriptions. A run of the
// checker describes the same VPC several times (once per endpoint resolved
// into it); the cache keeps those to one API round trip.
type ttlCache struct {
	mu       sync.RWMutex
	ttl      time.Duration
	capacity int
	data     map[string]cacheEntry
}

func newTTLCache(ttl time.Duration, capacity int) *ttlCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if capacity <= 0 {
		capacity = 100
	}
	return &ttlCache{
		ttl:      ttl,
		capacity: capacity,
		data:     make(map[string]cacheEntry),
	}
}

func (c *ttlCache) get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

func (c *ttlCache) set(key string, value interface{}) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.data) >= c.capacity {
		c.evictOldestLocked()
	}
	c.data[key] = cacheEntry{
		value:    value,
		expires:  now.Add(c.ttl),
		inserted: now,
	}
}

func (c *ttlCache) evictOldestLocked() {
	var oldestKey string
	var oldestTime time.Time
	first := true
	for k, v := range c.data {
		if first || v.inserted.Before(oldestTime) {
			oldestKey = k
			oldestTime = v.inserted
			first = false
		}
	}
	delete(c.data, oldestKey)
}
