package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time in milliseconds since epoch.
type Clock interface {
	Now() int64
}

type systemClock struct{}

// System returns a Clock backed by the wall clock.
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() int64 {
	return time.Now().UnixMilli()
}

// ManualClock only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now int64
}

// Manual returns a ManualClock starting at the given millisecond timestamp.
func Manual(start int64) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// Set moves the clock to ms.
func (c *ManualClock) Set(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = ms
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now += d.Milliseconds()
}
