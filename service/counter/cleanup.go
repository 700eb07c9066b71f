package counter

import (
	"time"

	kitmetrics "github.com/go-kit/kit/metrics"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tapglue/multibuy/platform/cache"
	"github.com/tapglue/multibuy/platform/metrics"
)

// CleanupFunc returns a cache.ExpireFunc reporting every background expiry
// pass. Removed keys and pass latency are labeled by component and strategy.
// The size is read back through next, so an instrumented Service refreshes its
// cache size gauge after each pass.
func CleanupFunc(
	logger log.Logger,
	next Service,
	component string,
	strategy cache.Strategy,
	removedCount kitmetrics.Counter,
	latency *prometheus.HistogramVec,
) cache.ExpireFunc {
	logger = log.With(logger, "strategy", string(strategy), "sub", "cache")

	return func(removed int, took time.Duration) {
		removedCount.With(
			metrics.FieldComponent, component,
			metrics.FieldStrategy, string(strategy),
		).Add(float64(removed))

		latency.With(prometheus.Labels{
			metrics.FieldComponent: component,
			metrics.FieldStrategy:  string(strategy),
		}).Observe(took.Seconds())

		size, err := next.Size()
		if err != nil {
			_ = level.Error(logger).Log("err", err, "removed", removed)
			return
		}

		_ = level.Info(logger).Log(
			"duration_ns", took.Nanoseconds(),
			"removed", removed,
			"size", size,
		)
	}
}
