package metrics

import (
	"fmt"

	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

// Field names for metric labels.
const (
	FieldComponent = "component"
	FieldMethod    = "method"
	FieldRoute     = "route"
	FieldService   = "service"
	FieldStatus    = "status"
	FieldStore     = "store"
	FieldStrategy  = "strategy"
	FieldVersion   = "version"
)

// Common metrics subsystems.
const (
	subsystemCache   = "cache"
	subsystemCleanup = "cleanup"
	subsystemErr     = "err"
	subsystemHit     = "hit"
	subsystemOp      = "op"
)

// BucketsCleanup are used for Histograms observing expiry passes.
var BucketsCleanup = []float64{
	.0001,
	.0005,
	.001,
	.005,
	.01,
	.05,
	.1,
	.5,
	1,
	5,
}

// KeyMetrics returns error and op counters plus an op latency histogram.
func KeyMetrics(
	namespace string,
	fieldKeys ...string,
) (*kitprometheus.Counter, *kitprometheus.Counter, *prometheus.HistogramVec) {
	errCount := kitprometheus.NewCounterFrom(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemErr,
		Name:      "count",
		Help:      fmt.Sprintf("Number of failed %s operations", namespace),
	}, fieldKeys)

	opCount := kitprometheus.NewCounterFrom(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemOp,
		Name:      "count",
		Help:      fmt.Sprintf("Number of %s operations performed", namespace),
	}, fieldKeys)

	opLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemOp,
			Name:      "latency_seconds",
			Help:      fmt.Sprintf("Distribution of %s op duration in seconds", namespace),
		},
		fieldKeys,
	)
	prometheus.MustRegister(opLatency)

	return errCount, opCount, opLatency
}

// CounterMetrics returns the hit counter and the live entry gauge of a
// counter cache.
func CounterMetrics(
	namespace string,
	fieldKeys ...string,
) (*kitprometheus.Counter, *kitprometheus.Gauge) {
	hitCount := kitprometheus.NewCounterFrom(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemHit,
		Name:      "count",
		Help:      "Number of counter increments served",
	}, fieldKeys)

	cacheSize := kitprometheus.NewGaugeFrom(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystemCache,
		Name:      "size",
		Help:      "Number of live keys in the counter cache",
	}, fieldKeys)

	return hitCount, cacheSize
}

// CleanupMetrics returns the removed entries counter and the pass latency
// histogram of background expiry.
func CleanupMetrics(
	namespace string,
	fieldKeys ...string,
) (*kitprometheus.Counter, *prometheus.HistogramVec) {
	removedCount := kitprometheus.NewCounterFrom(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemCleanup,
		Name:      "removed_count",
		Help:      "Number of expired keys removed",
	}, fieldKeys)

	latency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemCleanup,
			Name:      "latency_seconds",
			Help:      "Distribution of expiry pass duration in seconds",
			Buckets:   BucketsCleanup,
		},
		fieldKeys,
	)
	prometheus.MustRegister(latency)

	return removedCount, latency
}
