package settings

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tapglue/multibuy/platform/cache"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load("", noEnv)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}

	if have, want := s.Listen, DefaultListen; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := s.MetricsListen, DefaultMetricsListen; have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	c := cache.New(nil, s.CacheConfig()).Config()

	if have, want := c.Strategy, cache.StrategySweep; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := c.TTL, 30*time.Minute; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), noEnv)
	if err != nil {
		t.Errorf("have %v, want nil", err)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	err := os.WriteFile(path, []byte(`
log: debug
listen: 127.0.0.1:7000
strategy: deferred
ttl: 5s
reject_empty_keys: true
`), 0o600)
	if err != nil {
		t.Fatal(err)
	}

	env := map[string]string{
		"MB_LISTEN":      "127.0.0.1:7001",
		"MB_MAX_KEY_LEN": "128",
	}

	s, err := Load(path, func(k string) string { return env[k] })
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}

	if have, want := s.Log, LevelDebug; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := s.Listen, "127.0.0.1:7001"; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := s.TTL, 5*time.Second; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := s.RejectEmptyKeys, true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := s.MaxKeyLen, 128; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := s.CacheConfig().Strategy, cache.StrategyDeferred; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestLoadInvalidEnv(t *testing.T) {
	for name, value := range map[string]string{
		"MB_TTL":               "soon",
		"MB_SHARDS":            "many",
		"MB_REJECT_EMPTY_KEYS": "perhaps",
	} {
		_, err := Load("", func(k string) string {
			if k == name {
				return value
			}
			return ""
		})

		if have, want := IsInvalidSettings(err), true; have != want {
			t.Errorf("%s: have %v, want %v", name, have, want)
		}
	}
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Settings){
		"log":        func(s *Settings) { s.Log = "loud" },
		"listen":     func(s *Settings) { s.Listen = "nowhere" },
		"port":       func(s *Settings) { s.MetricsListen = "0.0.0.0:99999" },
		"strategy":   func(s *Settings) { s.Strategy = "lru" },
		"ttl":        func(s *Settings) { s.TTL = -time.Second },
		"shards":     func(s *Settings) { s.Shards = -1 },
		"ttl_sub":    func(s *Settings) { s.TTL = 500 * time.Microsecond },
		"interval":   func(s *Settings) { s.SweepInterval = 999 * time.Microsecond },
		"shards_max": func(s *Settings) { s.Shards = cache.MaxShards + 1 },
		"key_len":    func(s *Settings) { s.MaxKeyLen = -1 },
	} {
		s := Default()
		mutate(s)

		if have, want := IsInvalidSettings(s.Validate()), true; have != want {
			t.Errorf("%s: have %v, want %v", name, have, want)
		}
	}
}

func TestValidateBounds(t *testing.T) {
	s := Default()
	s.TTL = cache.MinTTL
	s.SweepInterval = cache.MinTTL
	s.Shards = cache.MaxShards

	if err := s.Validate(); err != nil {
		t.Errorf("have %v, want nil", err)
	}
}

func TestLoadSubMillisecondEnv(t *testing.T) {
	s, err := Load("", func(k string) string {
		if k == EnvPrefix+"TTL" {
			return "500us"
		}
		return ""
	})
	if err != nil {
		t.Fatal(err)
	}

	if have, want := IsInvalidSettings(s.Validate()), true; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func noEnv(string) string {
	return ""
}
