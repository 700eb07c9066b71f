package clock

import (
	"testing"
	"time"
)

func TestManualAdvance(t *testing.T) {
	c := Manual(1000)

	c.Advance(1500 * time.Millisecond)

	if have, want := c.Now(), int64(2500); have != want {
		t.Errorf("have %v, want %v", have, want)
	}

	c.Set(42)

	if have, want := c.Now(), int64(42); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func TestSystemNow(t *testing.T) {
	var (
		before = time.Now().UnixMilli()
		now    = System().Now()
		after  = time.Now().UnixMilli()
	)

	if now < before || now > after {
		t.Errorf("have %v, want between %v and %v", now, before, after)
	}
}
