package counter

import (
	"fmt"
	"sync"
	"testing"
)

type prepareFunc func(t *testing.T) Service

func testServiceIncrement(t *testing.T, p prepareFunc) {
	service := p(t)

	for i := uint32(1); i <= 3; i++ {
		count, err := service.Increment("test")
		if err != nil {
			t.Fatal(err)
		}

		if have, want := count, i; have != want {
			t.Errorf("have %v, want %v", have, want)
		}
	}
}

func testServiceGet(t *testing.T, p prepareFunc) {
	service := p(t)

	first, err := service.Get("purchase")
	if err != nil {
		t.Fatal(err)
	}

	second, err := service.Get("purchase")
	if err != nil {
		t.Fatal(err)
	}

	if have, want := first, uint32(1); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
	if have, want := second, uint32(2); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testServiceIndependentKeys(t *testing.T, p prepareFunc) {
	var (
		service = p(t)
		want    = []uint32{1, 1, 2}
	)

	for i, key := range []string{"a", "b", "a"} {
		have, err := service.Increment(key)
		if err != nil {
			t.Fatal(err)
		}

		if have != want[i] {
			t.Errorf("%s: have %v, want %v", key, have, want[i])
		}
	}
}

func testServiceSize(t *testing.T, p prepareFunc) {
	service := p(t)

	for i := 0; i < 12; i++ {
		_, err := service.Increment(fmt.Sprintf("key-%d", i%4))
		if err != nil {
			t.Fatal(err)
		}
	}

	size, err := service.Size()
	if err != nil {
		t.Fatal(err)
	}

	if have, want := size, 4; have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}

func testServiceConcurrent(t *testing.T, p prepareFunc) {
	var (
		service = p(t)
		n       = 500
		wg      sync.WaitGroup
	)

	for i := 0; i < n; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if _, err := service.Increment("contended"); err != nil {
				t.Error(err)
			}
		}()
	}

	wg.Wait()

	count, err := service.Get("contended")
	if err != nil {
		t.Fatal(err)
	}

	if have, want := count, uint32(n+1); have != want {
		t.Errorf("have %v, want %v", have, want)
	}
}
