// Package cache provides a small in-memory TTL cache, used for rendered
// chart images.
package cache

import (
	"sync"
	"time"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// InMemory is a thread-safe in-memory cache with TTL.
type InMemory[T any] struct {
	mu    sync.RWMutex
	items map[string]entry[T]
	ttl   time.Duration
	stop  chan struct{}
	once  sync.Once
}

// New creates a new in-memory cache with the given TTL and starts the
// background sweeper. Call Close to stop it.
func New[T any](ttl time.Duration) *InMemory[T] {
	if ttl <= 0 {
		ttl = time.Minute
	}
	c := &InMemory[T]{
		items: make(map[string]entry[T]),
		ttl:   ttl,
		stop:  make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Get retrieves a value from the cache. Returns false if not found or expired.
func (c *InMemory[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || time.Now().After(e.expiresAt) {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set stores a value in the cache with the configured TTL.
func (c *InMemory[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[T]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Delete removes a value from the cache.
func (c *InMemory[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Len returns the number of stored entries, expired ones included until swept.
func (c *InMemory[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Close stops the sweeper.
func (c *InMemory[T]) Close() {
	c.once.Do(func() { close(c.stop) })
}

// cleanup periodically removes expired entries.
func (c *InMemory[T]) cleanup() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *InMemory[T]) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, v := range c.items {
		if now.After(v.expiresAt) {
			delete(c.items, k)
		}
	}
}

// Observer is told about every lookup outcome.
type Observer interface {
	IncrCacheHit(cache string)
	IncrCacheMiss(cache string)
}

// Instrumented reports hits and misses of an underlying cache.
type Instrumented[T any] struct {
	name  string
	inner *InMemory[T]
	obs   Observer
}

// NewInstrumented wraps inner, reporting lookups under name.
func NewInstrumented[T any](name string, inner *InMemory[T], obs Observer) *Instrumented[T] {
	return &Instrumented[T]{name: name, inner: inner, obs: obs}
}

// Get looks up key and records the outcome.
func (c *Instrumented[T]) Get(key string) (T, bool) {
	v, ok := c.inner.Get(key)
	if ok {
		c.obs.IncrCacheHit(c.name)
	} else {
		c.obs.IncrCacheMiss(c.name)
	}
	return v, ok
}

// Set stores value under key.
func (c *Instrumented[T]) Set(key string, value T) { c.inner.Set(key, value) }

// Delete removes key.
func (c *Instrumented[T]) Delete(key string) { c.inner.Delete(key) }
