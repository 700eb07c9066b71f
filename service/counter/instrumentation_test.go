package counter

import (
	"testing"

	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tapglue/multibuy/platform/metrics"
)

type testMetrics struct {
	cacheSize *prometheus.GaugeVec
	errCount  *prometheus.CounterVec
	hitCount  *prometheus.CounterVec
	opCount   *prometheus.CounterVec
}

func TestInstrumentServiceMiddleware(t *testing.T) {
	var (
		m       = newTestMetrics()
		service = prepareInstrument(m, prepareValidate(t))
	)

	for _, key := range []string{"a", "a", "b"} {
		if _, err := service.Increment(key); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := service.Get("a"); err != nil {
		t.Fatal(err)
	}

	if _, err := service.Get(""); err == nil {
		t.Fatal("expected error")
	}

	labels := []string{"test", serviceName, "memory"}

	if have, want := testutil.ToFloat64(m.hitCount.WithLabelValues(labels...)), 4.0; have != want {
		t.Errorf("hits: have %v, want %v", have, want)
	}
	if have, want := testutil.ToFloat64(m.cacheSize.WithLabelValues(labels...)), 2.0; have != want {
		t.Errorf("size: have %v, want %v", have, want)
	}
	if have, want := testutil.ToFloat64(m.errCount.WithLabelValues("test", "Get", serviceName, "memory")), 1.0; have != want {
		t.Errorf("errors: have %v, want %v", have, want)
	}
	if have, want := testutil.ToFloat64(m.opCount.WithLabelValues("test", "Increment", serviceName, "memory")), 3.0; have != want {
		t.Errorf("ops: have %v, want %v", have, want)
	}
}

func TestInstrumentServiceMiddlewareBehaviour(t *testing.T) {
	testServiceIncrement(t, func(t *testing.T) Service {
		return prepareInstrument(newTestMetrics(), prepareCache(t))
	})
	testServiceConcurrent(t, func(t *testing.T) Service {
		return prepareInstrument(newTestMetrics(), prepareCache(t))
	})
}

func newTestMetrics() *testMetrics {
	var (
		opKeys = []string{
			metrics.FieldComponent,
			metrics.FieldMethod,
			metrics.FieldService,
			metrics.FieldStore,
		}
		cacheKeys = []string{
			metrics.FieldComponent,
			metrics.FieldService,
			metrics.FieldStore,
		}
	)

	return &testMetrics{
		cacheSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "size"}, cacheKeys),
		errCount:  prometheus.NewCounterVec(prometheus.CounterOpts{Name: "err"}, opKeys),
		hitCount:  prometheus.NewCounterVec(prometheus.CounterOpts{Name: "hit"}, cacheKeys),
		opCount:   prometheus.NewCounterVec(prometheus.CounterOpts{Name: "op"}, opKeys),
	}
}

func prepareInstrument(m *testMetrics, next Service) Service {
	return InstrumentServiceMiddleware(
		"test",
		"memory",
		kitprometheus.NewCounter(m.errCount),
		kitprometheus.NewCounter(m.hitCount),
		kitprometheus.NewGauge(m.cacheSize),
		kitprometheus.NewCounter(m.opCount),
		prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "latency"}, []string{
			metrics.FieldComponent,
			metrics.FieldMethod,
			metrics.FieldService,
			metrics.FieldStore,
		}),
	)(next)
}
