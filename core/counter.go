package core

import (
	"github.com/tapglue/multibuy/service/counter"
)

// CounterIncrementFunc bumps the count for key and returns the new value.
type CounterIncrementFunc func(key string) (uint32, error)

// CounterIncrement bumps the count for key and returns the new value.
func CounterIncrement(counters counter.Service) CounterIncrementFunc {
	return func(key string) (uint32, error) {
		count, err := counters.Increment(key)
		if err != nil {
			return 0, translateCounterError(err)
		}

		return count, nil
	}
}

// CounterGetFunc returns the count for key. Like CounterIncrementFunc it
// counts the call itself.
type CounterGetFunc func(key string) (uint32, error)

// CounterGet returns the count for key after counting this call.
func CounterGet(counters counter.Service) CounterGetFunc {
	return func(key string) (uint32, error) {
		count, err := counters.Get(key)
		if err != nil {
			return 0, translateCounterError(err)
		}

		return count, nil
	}
}

// CounterSizeFunc returns the number of live keys.
type CounterSizeFunc func() (int, error)

// CounterSize returns the number of live keys.
func CounterSize(counters counter.Service) CounterSizeFunc {
	return func() (int, error) {
		return counters.Size()
	}
}

func translateCounterError(err error) error {
	if counter.IsInvalidKey(err) {
		return wrapError(ErrInvalidEntity, "%s", err)
	}

	return err
}
