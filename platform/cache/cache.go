// Package cache implements an in-memory counter cache whose entries expire
// after a period of inactivity or a fixed window after insertion.
package cache

import (
	"hash/fnv"
	"math"
	"sync"
	"sync/atomic"

	"github.com/tapglue/multibuy/platform/clock"
)

// Entry is the state kept per key.
type Entry struct {
	Count     uint32
	Created   int64
	LastTouch int64

	gen uint64
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// Cache is a sharded map of counters. Keys hash onto shards so only keys on
// the same shard contend for a lock.
type Cache struct {
	clock  clock.Clock
	config Config
	gen    atomic.Uint64
	live   atomic.Int64
	mask   uint32
	queue  *deferQueue
	shards []*shard
}

// New returns a Cache using config, filling unset fields with defaults.
func New(c clock.Clock, config Config) *Cache {
	config = config.withDefaults()

	shards := make([]*shard, config.Shards)
	for i := range shards {
		shards[i] = &shard{entries: map[string]*Entry{}}
	}

	return &Cache{
		clock:  c,
		config: config,
		mask:   uint32(config.Shards - 1),
		queue:  newDeferQueue(),
		shards: shards,
	}
}

// Config returns the effective configuration.
func (c *Cache) Config() Config {
	return c.config
}

// Increment bumps the count for key and returns the new value. An absent key
// starts at 1.
func (c *Cache) Increment(key string) uint32 {
	count, _ := c.incrementEntry(key)
	return count
}

// Get has the same increment-and-read semantics as Increment.
func (c *Cache) Get(key string) uint32 {
	count, _ := c.incrementEntry(key)
	return count
}

// incrementEntry is Increment, additionally reporting if key was inserted by
// this call.
func (c *Cache) incrementEntry(key string) (uint32, bool) {
	var (
		now = c.clock.Now()
		s   = c.shardFor(key)
	)

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &Entry{
			Created: now,
			gen:     c.gen.Add(1),
		}
		s.entries[key] = e
		c.live.Add(1)
	}

	if e.Count < math.MaxUint32 {
		e.Count++
	}
	e.LastTouch = now

	var (
		count = e.Count
		gen   = e.gen
	)
	s.mu.Unlock()

	if !ok && c.config.Strategy == StrategyDeferred {
		c.queue.push(deferItem{
			fireAt: now + c.config.TTL.Milliseconds(),
			gen:    gen,
			key:    key,
		})
	}

	return count, !ok
}

// peek returns a copy of the entry for key without touching it.
func (c *Cache) peek(key string) (Entry, bool) {
	s := c.shardFor(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}

	return *e, true
}

// Len returns the number of live entries without taking any shard lock.
func (c *Cache) Len() int {
	return int(c.live.Load())
}

// pending returns the number of scheduled removals of the deferred strategy.
func (c *Cache) pending() int {
	return c.queue.len()
}

// Expire runs a single cleanup pass at the current time and returns the
// number of removed entries.
func (c *Cache) Expire() int {
	now := c.clock.Now()

	if c.config.Strategy == StrategyDeferred {
		return c.expireDeferred(now)
	}

	return c.sweep(now)
}

// sweep holds one shard lock at a time.
func (c *Cache) sweep(now int64) int {
	var (
		removed = 0
		ttl     = c.config.TTL.Milliseconds()
	)

	for _, s := range c.shards {
		n := 0

		s.mu.Lock()
		for key, e := range s.entries {
			if now-e.LastTouch >= ttl {
				delete(s.entries, key)
				n++
			}
		}
		s.mu.Unlock()

		c.live.Add(-int64(n))
		removed += n
	}

	return removed
}

func (c *Cache) expireDeferred(now int64) int {
	removed := 0

	for _, item := range c.queue.popDue(now) {
		s := c.shardFor(item.key)

		s.mu.Lock()
		if e, ok := s.entries[item.key]; ok && e.gen == item.gen {
			delete(s.entries, item.key)
			c.live.Add(-1)
			removed++
		}
		s.mu.Unlock()
	}

	return removed
}

func (c *Cache) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))

	return c.shards[h.Sum32()&c.mask]
}
