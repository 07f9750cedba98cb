package cache

import (
	"sync"
	"time"

	"github.com/use-agent/pricewatch/models"
)

// entry holds a cached result with its capture time.
type entry struct {
	result     *models.ResultSet
	capturedAt time.Time
}

// Cache is a small TTL cache for scraped result sets, keyed by source URL.
// It is safe for concurrent use and never starts goroutines: expired
// entries are dropped lazily.
type Cache struct {
	mu         sync.Mutex
	store      map[string]*entry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// New creates a Cache. A nil clock defaults to time.Now.
func New(ttl time.Duration, maxEntries int, clock func() time.Time) *Cache {
	if clock == nil {
		clock = time.Now
	}
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &Cache{
		store:      make(map[string]*entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        clock,
	}
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the result stored under key if it is younger than the TTL.
func (c *Cache) Get(key string) (*models.ResultSet, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.store[key]
	if !ok {
		return nil, time.Time{}, false
	}
	if c.now().Sub(e.capturedAt) >= c.ttl {
		delete(c.store, key)
		return nil, time.Time{}, false
	}
	return e.result, e.capturedAt, true
}

// Set stores rs under key. At capacity, expired entries are dropped first,
// then the oldest one.
func (c *Cache) Set(key string, rs *models.ResultSet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		c.evictLocked(now)
	}
	c.store[key] = &entry{result: rs, capturedAt: now}
}

// Age reports how long ago key was captured, regardless of expiry.
func (c *Cache) Age(key string) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.store[key]
	if !ok {
		return 0, false
	}
	return c.now().Sub(e.capturedAt), true
}

// Purge removes every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.store)
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

func (c *Cache) evictLocked(now time.Time) {
	var (
		oldestKey string
		oldestAt  time.Time
	)
	for k, e := range c.store {
		if now.Sub(e.capturedAt) >= c.ttl {
			delete(c.store, k)
			continue
		}
		if oldestKey == "" || e.capturedAt.Before(oldestAt) {
			oldestKey, oldestAt = k, e.capturedAt
		}
	}
	if len(c.store) >= c.maxEntries && oldestKey != "" {
		delete(c.store, oldestKey)
	}
}
