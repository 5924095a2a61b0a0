// Package cache provides a generic, thread-safe TTL cache. The web
// layer uses it to keep group metadata and computed statistics warm so
// repeated requests do not hammer the upstream API.
package cache

import (
	"sync"
	"time"
)

// entry pairs a value with its expiry.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e *entry[V]) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// TTL is a thread-safe time-to-live cache. Expired entries are dropped
// lazily on Get and swept by a background goroutine; call Close to stop
// the sweeper.
type TTL[V any] struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]*entry[V]

	hits   uint64
	misses uint64

	shutdown chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewTTL creates a TTL cache. cleanupInterval bounds how long an expired
// entry can linger; pass 0 to default to the TTL itself.
func NewTTL[V any](ttl, cleanupInterval time.Duration) *TTL[V] {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if cleanupInterval <= 0 {
		cleanupInterval = ttl
	}

	c := &TTL[V]{
		ttl:      ttl,
		items:    make(map[string]*entry[V]),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go c.sweep(cleanupInterval)
	return c
}

// Get retrieves a live value by key
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	now := time.Now()
	if !ok || e.expired(now) {
		if ok {
			c.mu.Lock()
			if cur, still := c.items[key]; still && cur.expired(now) {
				delete(c.items, key)
			}
			c.mu.Unlock()
		}
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		var zero V
		return zero, false
	}

	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return e.value, true
}

// Set stores a value under key with the configured TTL
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	c.items[key] = &entry[V]{value: value, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Delete removes an entry, reporting whether it existed
func (c *TTL[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	delete(c.items, key)
	return ok
}

// Size returns the number of entries, expired or not
func (c *TTL[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats returns lifetime hit and miss counts
func (c *TTL[V]) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Close stops the background sweeper. Idempotent.
func (c *TTL[V]) Close() {
	c.once.Do(func() {
		close(c.shutdown)
		<-c.done
	})
}

func (c *TTL[V]) sweep(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.shutdown:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for key, e := range c.items {
				if e.expired(now) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
