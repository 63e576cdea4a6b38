package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// entry is a cached value with its expiry and last use
type entry[V any] struct {
	value    V
	expires  time.Time
	lastUsed time.Time
}

func (e *entry[V]) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// Cache is a thread-safe in-memory cache with TTL and a capacity bound.
// At capacity the least recently used entry is evicted.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	items    map[K]*entry[V]
	maxItems int
	ttl      time.Duration

	hits   atomic.Int64
	misses atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
}

// Config holds cache configuration
type Config struct {
	MaxItems        int
	TTL             time.Duration
	CleanupInterval time.Duration
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{
		MaxItems:        10000,
		TTL:             5 * time.Minute,
		CleanupInterval: time.Minute,
	}
}

// New creates a cache and starts its expiry sweep
func New[K comparable, V any](cfg Config) *Cache[K, V] {
	def := DefaultConfig()
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = def.MaxItems
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}

	c := &Cache[K, V]{
		items:    make(map[K]*entry[V]),
		maxItems: cfg.MaxItems,
		ttl:      cfg.TTL,
		stop:     make(chan struct{}),
	}
	go c.sweep(cfg.CleanupInterval)
	return c
}

// Close stops the sweep goroutine. The cache stays usable.
func (c *Cache[K, V]) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Get returns the value for key unless it is missing or expired
func (c *Cache[K, V]) Get(key K) (V, bool) {
	now := time.Now()

	c.mu.Lock()
	e, ok := c.items[key]
	if ok && e.expired(now) {
		delete(c.items, key)
		ok = false
	}
	if ok {
		e.lastUsed = now
	}
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	return e.value, true
}

// Set stores value under key with the default TTL
func (c *Cache[K, V]) Set(key K, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key; a ttl of 0 never expires
func (c *Cache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) {
	now := time.Now()
	e := &entry[V]{value: value, lastUsed: now}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, replace := c.items[key]; !replace && len(c.items) >= c.maxItems {
		c.evictLeastRecent()
	}
	c.items[key] = e
}

// GetOrLoad returns the cached value for key, or stores and returns what
// load produces. A failed load is not cached. The flag reports a hit.
// Concurrent misses for one key may load more than once.
func (c *Cache[K, V]) GetOrLoad(key K, load func() (V, error)) (V, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}
	v, err := load()
	if err != nil {
		var zero V
		return zero, false, err
	}
	c.Set(key, v)
	return v, false, nil
}

// Size returns the number of entries, expired ones included until swept
func (c *Cache[K, V]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns hit and miss counts and the hit rate in percent
func (c *Cache[K, V]) Stats() (hits, misses int64, hitRate float64) {
	hits, misses = c.hits.Load(), c.misses.Load()
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	return hits, misses, hitRate
}

// evictLeastRecent drops the entry used longest ago. Caller holds mu.
func (c *Cache[K, V]) evictLeastRecent() {
	var (
		victim K
		oldest time.Time
		found  bool
	)
	for key, e := range c.items {
		if !found || e.lastUsed.Before(oldest) {
			victim, oldest, found = key, e.lastUsed, true
		}
	}
	if found {
		delete(c.items, victim)
	}
}

func (c *Cache[K, V]) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			c.mu.Lock()
			for key, e := range c.items {
				if e.expired(now) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}
