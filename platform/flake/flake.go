package flake

import (
	"errors"
	"hash/fnv"
	"os"
	"sync"
	"time"

	"github.com/sony/sonyflake"
)

// ErrUnavailable is returned when no generator could be set up.
var ErrUnavailable = errors.New("flake unavailable")

var (
	mu     sync.Mutex
	flakes = map[string]*sonyflake.Sonyflake{}
)

// NextID returns the next safe to use ID for the given namespace.
func NextID(namespace string) (uint64, error) {
	mu.Lock()
	f, ok := flakes[namespace]
	if !ok {
		var s sonyflake.Settings
		s.StartTime = time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
		s.MachineID = machineID

		f = sonyflake.NewSonyflake(s)
		if f == nil {
			mu.Unlock()
			return 0, ErrUnavailable
		}

		flakes[namespace] = f
	}
	mu.Unlock()

	return f.NextID()
}

// machineID derives the id from the hostname as containers often lack the
// private address sonyflake looks for.
func machineID() (uint16, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return 0, err
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(hostname))

	return uint16(h.Sum32()), nil
}
