package counter

import (
	"time"

	kitmetrics "github.com/go-kit/kit/metrics"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tapglue/multibuy/platform/metrics"
)

const serviceName = "counter"

type instrumentService struct {
	cacheSize kitmetrics.Gauge
	component string
	errCount  kitmetrics.Counter
	hitCount  kitmetrics.Counter
	next      Service
	opCount   kitmetrics.Counter
	opLatency *prometheus.HistogramVec
	store     string
}

// InstrumentServiceMiddleware observes key aspects of Service operations and
// exposes Prometheus metrics. Every served Increment or Get counts as a hit,
// the cache size gauge is refreshed whenever a key was newly inserted.
func InstrumentServiceMiddleware(
	component, store string,
	errCount kitmetrics.Counter,
	hitCount kitmetrics.Counter,
	cacheSize kitmetrics.Gauge,
	opCount kitmetrics.Counter,
	opLatency *prometheus.HistogramVec,
) ServiceMiddleware {
	return func(next Service) Service {
		return &instrumentService{
			cacheSize: cacheSize,
			component: component,
			errCount:  errCount,
			hitCount:  hitCount,
			next:      next,
			opCount:   opCount,
			opLatency: opLatency,
			store:     store,
		}
	}
}

func (s *instrumentService) Increment(key string) (count uint32, err error) {
	defer func(begin time.Time) {
		s.trackHit(count, err)
		s.track("Increment", begin, err)
	}(time.Now())

	return s.next.Increment(key)
}

func (s *instrumentService) Get(key string) (count uint32, err error) {
	defer func(begin time.Time) {
		s.trackHit(count, err)
		s.track("Get", begin, err)
	}(time.Now())

	return s.next.Get(key)
}

func (s *instrumentService) Size() (size int, err error) {
	defer func(begin time.Time) {
		if err == nil {
			s.cacheSize.With(
				metrics.FieldComponent, s.component,
				metrics.FieldService, serviceName,
				metrics.FieldStore, s.store,
			).Set(float64(size))
		}

		s.track("Size", begin, err)
	}(time.Now())

	return s.next.Size()
}

func (s *instrumentService) track(method string, begin time.Time, err error) {
	if err != nil {
		s.errCount.With(
			metrics.FieldComponent, s.component,
			metrics.FieldMethod, method,
			metrics.FieldService, serviceName,
			metrics.FieldStore, s.store,
		).Add(1)

		return
	}

	s.opCount.With(
		metrics.FieldComponent, s.component,
		metrics.FieldMethod, method,
		metrics.FieldService, serviceName,
		metrics.FieldStore, s.store,
	).Add(1)

	s.opLatency.With(prometheus.Labels{
		metrics.FieldComponent: s.component,
		metrics.FieldMethod:    method,
		metrics.FieldService:   serviceName,
		metrics.FieldStore:     s.store,
	}).Observe(time.Since(begin).Seconds())
}

// trackHit counts the hit and, as a count of 1 marks an insertion, refreshes
// the size gauge.
func (s *instrumentService) trackHit(count uint32, err error) {
	if err != nil {
		return
	}

	s.hitCount.With(
		metrics.FieldComponent, s.component,
		metrics.FieldService, serviceName,
		metrics.FieldStore, s.store,
	).Add(1)

	if count == 1 {
		_, _ = s.Size()
	}
}
