// File path: internal/cache/ttl.go
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value    V
	loadedAt time.Time
}

// TTL is a capacity-bounded cache whose entries expire after a fixed
// time-to-live. Expired entries are evicted lazily on access; when an
// insertion pushes the cache past its soft capacity, every expired entry is
// swept in the same call. There is no background janitor.
type TTL[V any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	data     map[string]entry[V]
	now      func() time.Time
}

// NewTTL constructs a cache with the given time-to-live and soft capacity.
func NewTTL[V any](ttl time.Duration, capacity int) *TTL[V] {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if capacity <= 0 {
		capacity = 100
	}
	return &TTL[V]{
		ttl:      ttl,
		capacity: capacity,
		data:     make(map[string]entry[V]),
		now:      time.Now,
	}
}

// Get returns the cached value when present and not expired. An expired entry
// is deleted on the spot and reported as a miss.
func (c *TTL[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ent, ok := c.data[key]
	if !ok {
		return zero, false
	}
	if c.now().Sub(ent.loadedAt) >= c.ttl {
		delete(c.data, key)
		return zero, false
	}
	return ent.value, true
}

// Set stores a value under the key, stamping it with the current time.
func (c *TTL[V]) Set(key string, value V) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = entry[V]{value: value, loadedAt: c.now()}
	if len(c.data) > c.capacity {
		c.sweepLocked()
	}
}

// Len reports the number of resident entries, expired or not.
func (c *TTL[V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

func (c *TTL[V]) sweepLocked() {
	cutoff := c.now()
	for key, ent := range c.data {
		if cutoff.Sub(ent.loadedAt) >= c.ttl {
			delete(c.data, key)
		}
	}
}
