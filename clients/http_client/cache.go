package http_client

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// responseCache keeps one decoded upstream document per symbol for a short while so
// that the concurrent table fetches of a valuation share a single round trip.
type responseCache[T any] struct {
	ttl     time.Duration
	group   singleflight.Group
	mu      sync.Mutex
	entries map[string]cacheEntry[T]
}

type cacheEntry[T any] struct {
	value     T
	fetchedAt time.Time
}

func newResponseCache[T any](ttl time.Duration) *responseCache[T] {
	return &responseCache[T]{ttl: ttl, entries: make(map[string]cacheEntry[T])}
}

func (c *responseCache[T]) get(key string, fetch func() (T, error)) (T, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		if time.Since(e.fetchedAt) < c.ttl {
			c.mu.Unlock()
			return e.value, nil
		}
		delete(c.entries, key)
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		value, err := fetch()
		if err != nil {
			return value, err
		}
		c.store(key, value)
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// store saves value under key and drops every expired entry.
func (c *responseCache[T]) store(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if now.Sub(e.fetchedAt) >= c.ttl {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry[T]{value: value, fetchedAt: now}
}
