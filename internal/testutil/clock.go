package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant a DeterministicClock reports.
var Epoch = time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

// DeterministicClock is a fake wall clock for tests. Every reading advances
// it by a fixed step, so cache timestamps and step numbers are reproducible.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	seq  int64
	step time.Duration
}

// NewDeterministicClock creates a clock at Epoch advancing one minute per
// reading. The first call to Next() returns 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{step: time.Minute}
}

// Next advances the clock and returns the new step number.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Now advances the clock and returns the matching instant.
// Its signature matches cache.WithClock.
func (c *DeterministicClock) Now() time.Time {
	seq := c.Next()
	return Epoch.Add(time.Duration(seq) * c.step)
}

// Current returns the current step number without advancing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock to Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
