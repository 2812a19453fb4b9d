package testutil

import (
	"sync"
	"time"
)

// FixedClock is a thread-safe wall clock frozen at a known instant.
//
// Tests advance it explicitly, which makes normalization timestamps and
// envelope stamps deterministic and lets tests assert monotonic updatedAt
// progressions without sleeping.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock creates a clock frozen at the given instant.
func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now}
}

// Now returns the frozen instant.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d. Negative d is rejected by panic:
// a clock that goes backwards means the test is misconfigured.
func (c *FixedClock) Advance(d time.Duration) {
	if d < 0 {
		panic("FixedClock: cannot advance backwards")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the clock to a specific instant.
func (c *FixedClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
