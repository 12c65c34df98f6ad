package testutil

import (
	"context"
	"sync"
)

// MemCache is an in-memory key-value cache with the Get/Put shape of
// cache.Cache. Writes can be made to fail to exercise write-through errors.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type MemCache struct {
	mu     sync.Mutex
	data   map[string]string
	puts   int
	failOn error
}

// NewMemCache creates an empty cache.
func NewMemCache() *MemCache {
	return &MemCache{data: make(map[string]string)}
}

// Get returns the value stored under key.
func (c *MemCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

// Put stores value under key, or returns the injected failure.
// Failed writes are not counted.
func (c *MemCache) Put(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failOn != nil {
		return c.failOn
	}
	c.data[key] = value
	c.puts++
	return nil
}

// FailWith makes every following Put return err. A nil err restores writes.
func (c *MemCache) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failOn = err
}

// Puts returns the number of successful writes.
func (c *MemCache) Puts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.puts
}

// Value returns the raw value under key, bypassing the write counter.
func (c *MemCache) Value(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

// Seed stores value under key without counting it as a write.
func (c *MemCache) Seed(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}
