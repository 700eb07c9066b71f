package cache

import (
	"context"
	"time"
)

// ExpireFunc is called after every background cleanup pass.
type ExpireFunc func(removed int, took time.Duration)

// Run drives the background expiry of the configured strategy until ctx is
// done. It returns nil on cancellation.
func (c *Cache) Run(ctx context.Context, fn ExpireFunc) error {
	if c.config.Strategy == StrategyDeferred {
		return c.runDeferred(ctx, fn)
	}

	return c.runSweep(ctx, fn)
}

func (c *Cache) runSweep(ctx context.Context, fn ExpireFunc) error {
	ticker := time.NewTicker(c.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.expire(fn)
		}
	}
}

func (c *Cache) runDeferred(ctx context.Context, fn ExpireFunc) error {
	timer := time.NewTimer(c.config.TTL)
	defer timer.Stop()

	for {
		timer.Reset(c.nextWait())

		select {
		case <-ctx.Done():
			return nil
		case <-c.queue.wake:
		case <-timer.C:
			c.expire(fn)
		}
	}
}

// nextWait is the time until the head of the queue is due. An empty queue
// waits a full TTL, a push wakes the loop earlier.
func (c *Cache) nextWait() time.Duration {
	fireAt, ok := c.queue.next()
	if !ok {
		return c.config.TTL
	}

	wait := time.Duration(fireAt-c.clock.Now()) * time.Millisecond
	if wait < 0 {
		return 0
	}

	return wait
}

func (c *Cache) expire(fn ExpireFunc) {
	begin := time.Now()

	removed := c.Expire()

	if fn != nil {
		fn(removed, time.Since(begin))
	}
}
