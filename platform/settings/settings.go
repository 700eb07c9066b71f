// Package settings loads the service configuration from defaults, an optional
// YAML file and MB_ prefixed environment variables, in that order.
package settings

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"gopkg.in/yaml.v3"

	"github.com/tapglue/multibuy/platform/cache"
)

// EnvPrefix is prepended to the upper-cased setting name to form the
// environment override, e.g. MB_LISTEN.
const EnvPrefix = "MB_"

// Defaults.
const (
	DefaultListen        = "0.0.0.0:6080"
	DefaultLog           = LevelInfo
	DefaultMetricsListen = "0.0.0.0:19011"
)

// Log levels.
const (
	LevelDebug = "debug"
	LevelError = "error"
	LevelInfo  = "info"
	LevelWarn  = "warn"
)

// ErrInvalidSettings is returned for unusable configuration.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the full service configuration. A zero TTL or SweepInterval
// selects the strategy's default.
type Settings struct {
	Log             string        `yaml:"log"`
	Listen          string        `yaml:"listen"`
	MetricsListen   string        `yaml:"metrics_listen"`
	Strategy        string        `yaml:"strategy"`
	TTL             time.Duration `yaml:"ttl"`
	SweepInterval   time.Duration `yaml:"sweep_interval"`
	Shards          int           `yaml:"shards"`
	RejectEmptyKeys bool          `yaml:"reject_empty_keys"`
	MaxKeyLen       int           `yaml:"max_key_len"`
}

// Default returns Settings with every default applied.
func Default() *Settings {
	return &Settings{
		Log:           DefaultLog,
		Listen:        DefaultListen,
		MetricsListen: DefaultMetricsListen,
		Strategy:      string(cache.StrategySweep),
		Shards:        cache.DefaultShards,
	}
}

// Load reads Settings from the optional file at path and applies environment
// overrides looked up with getenv. A missing file is not an error.
func Load(path string, getenv func(string) string) (*Settings, error) {
	s := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("settings read '%s': %s", path, err)
		}

		if err == nil {
			if err := yaml.Unmarshal(raw, s); err != nil {
				return nil, wrapError(ErrInvalidSettings, "file '%s': %s", path, err)
			}
		}
	}

	if err := s.applyEnv(getenv); err != nil {
		return nil, err
	}

	return s, nil
}

// CacheConfig translates the Settings into a cache.Config. Validate must have
// passed.
func (s *Settings) CacheConfig() cache.Config {
	strategy, _ := cache.ParseStrategy(s.Strategy)

	return cache.Config{
		Strategy:      strategy,
		TTL:           s.TTL,
		SweepInterval: s.SweepInterval,
		Shards:        s.Shards,
	}
}

// Validate checks Settings for consistency.
func (s *Settings) Validate() error {
	if !govalidator.IsIn(strings.ToLower(s.Log), LevelDebug, LevelInfo, LevelWarn, LevelError) {
		return wrapError(ErrInvalidSettings, "log level '%s'", s.Log)
	}

	for name, addr := range map[string]string{
		"listen":         s.Listen,
		"metrics_listen": s.MetricsListen,
	} {
		if !isListenAddr(addr) {
			return wrapError(ErrInvalidSettings, "%s address '%s'", name, addr)
		}
	}

	if _, err := cache.ParseStrategy(s.Strategy); err != nil {
		return wrapError(ErrInvalidSettings, "%s", err)
	}

	for name, d := range map[string]time.Duration{
		"ttl":            s.TTL,
		"sweep_interval": s.SweepInterval,
	} {
		if d < 0 || (d > 0 && d < cache.MinTTL) {
			return wrapError(ErrInvalidSettings, "%s '%s' must be 0 or at least %s", name, d, cache.MinTTL)
		}
	}

	if s.Shards < 0 || s.Shards > cache.MaxShards {
		return wrapError(ErrInvalidSettings, "shards %d not in [0, %d]", s.Shards, cache.MaxShards)
	}

	if s.MaxKeyLen < 0 {
		return wrapError(ErrInvalidSettings, "negative max_key_len")
	}

	return nil
}

func (s *Settings) applyEnv(getenv func(string) string) error {
	var (
		strs = map[string]*string{
			"LOG":            &s.Log,
			"LISTEN":         &s.Listen,
			"METRICS_LISTEN": &s.MetricsListen,
			"STRATEGY":       &s.Strategy,
		}
		durations = map[string]*time.Duration{
			"TTL":            &s.TTL,
			"SWEEP_INTERVAL": &s.SweepInterval,
		}
		ints = map[string]*int{
			"SHARDS":      &s.Shards,
			"MAX_KEY_LEN": &s.MaxKeyLen,
		}
	)

	for name, v := range strs {
		if raw := getenv(EnvPrefix + name); raw != "" {
			*v = raw
		}
	}

	for name, v := range durations {
		raw := getenv(EnvPrefix + name)
		if raw == "" {
			continue
		}

		d, err := time.ParseDuration(raw)
		if err != nil {
			return wrapError(ErrInvalidSettings, "%s%s: %s", EnvPrefix, name, err)
		}

		*v = d
	}

	for name, v := range ints {
		raw := getenv(EnvPrefix + name)
		if raw == "" {
			continue
		}

		i, err := strconv.Atoi(raw)
		if err != nil {
			return wrapError(ErrInvalidSettings, "%s%s: %s", EnvPrefix, name, err)
		}

		*v = i
	}

	if raw := getenv(EnvPrefix + "REJECT_EMPTY_KEYS"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return wrapError(ErrInvalidSettings, "%sREJECT_EMPTY_KEYS: %s", EnvPrefix, err)
		}

		s.RejectEmptyKeys = b
	}

	return nil
}

func isListenAddr(addr string) bool {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}

	if !govalidator.IsPort(port) {
		return false
	}

	return host == "" || govalidator.IsHost(host)
}
