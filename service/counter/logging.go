package counter

import (
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

type logService struct {
	logger log.Logger
	next   Service
}

// LogMiddleware given a Logger wraps the next Service with logging capabilities.
func LogMiddleware(logger log.Logger, store string) ServiceMiddleware {
	return func(next Service) Service {
		logger = log.With(
			logger,
			"service", "counter",
			"store", store,
		)

		return &logService{logger: logger, next: next}
	}
}

func (s *logService) Increment(key string) (count uint32, err error) {
	defer func(begin time.Time) {
		s.log("Increment", key, count, begin, err)
	}(time.Now())

	return s.next.Increment(key)
}

func (s *logService) Get(key string) (count uint32, err error) {
	defer func(begin time.Time) {
		s.log("Get", key, count, begin, err)
	}(time.Now())

	return s.next.Get(key)
}

func (s *logService) Size() (size int, err error) {
	defer func(begin time.Time) {
		ps := []interface{}{
			"duration_ns", time.Since(begin).Nanoseconds(),
			"method", "Size",
			"size", size,
		}

		if err != nil {
			_ = level.Error(s.logger).Log(append(ps, "err", err)...)
			return
		}

		_ = level.Debug(s.logger).Log(ps...)
	}(time.Now())

	return s.next.Size()
}

func (s *logService) log(
	method, key string,
	count uint32,
	begin time.Time,
	err error,
) {
	ps := []interface{}{
		"count", count,
		"duration_ns", time.Since(begin).Nanoseconds(),
		"key", key,
		"method", method,
	}

	if err != nil {
		_ = level.Error(s.logger).Log(append(ps, "err", err)...)
		return
	}

	_ = level.Info(s.logger).Log(ps...)
}
