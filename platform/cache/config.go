package cache

import (
	"strings"
	"time"
)

// Strategy selects how entries are expired.
type Strategy string

// Supported strategies.
//
// StrategySweep refreshes an entry on every touch and removes it once it has
// been idle for the TTL, checked by a periodic sweep (sliding window).
//
// StrategyDeferred removes an entry TTL after its insertion no matter how
// often it was touched in between (fixed window).
const (
	StrategySweep    Strategy = "sweep"
	StrategyDeferred Strategy = "deferred"
)

// Defaults.
const (
	DefaultDeferredTTL   = 3 * time.Second
	DefaultShards        = 32
	DefaultSweepInterval = 30 * time.Minute
	DefaultSweepTTL      = 30 * time.Minute
)

// Bounds. Timestamps have millisecond resolution, so shorter durations are
// raised to MinTTL. Shard counts are capped at MaxShards.
const (
	MaxShards = 1 << 16
	MinTTL    = time.Millisecond
)

// Config controls a Cache.
type Config struct {
	Strategy      Strategy
	TTL           time.Duration
	SweepInterval time.Duration
	Shards        int
}

// DefaultConfig returns the defaults for strategy.
func DefaultConfig(strategy Strategy) Config {
	return Config{Strategy: strategy}.withDefaults()
}

// ParseStrategy returns the Strategy named by s.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategySweep:
		return StrategySweep, nil
	case StrategyDeferred:
		return StrategyDeferred, nil
	}

	return "", wrapError(ErrInvalidStrategy, "%q", s)
}

func (c Config) withDefaults() Config {
	if c.Strategy == "" {
		c.Strategy = StrategySweep
	}

	if c.TTL <= 0 {
		c.TTL = DefaultSweepTTL

		if c.Strategy == StrategyDeferred {
			c.TTL = DefaultDeferredTTL
		}
	}

	if c.TTL < MinTTL {
		c.TTL = MinTTL
	}

	if c.SweepInterval <= 0 {
		c.SweepInterval = c.TTL
	}

	if c.SweepInterval < MinTTL {
		c.SweepInterval = MinTTL
	}

	if c.Shards <= 0 {
		c.Shards = DefaultShards
	}

	if c.Shards > MaxShards {
		c.Shards = MaxShards
	}

	n := 1
	for n < c.Shards {
		n <<= 1
	}
	c.Shards = n

	return c
}
