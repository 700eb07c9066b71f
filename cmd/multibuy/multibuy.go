package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/tapglue/multibuy/core"
	handler "github.com/tapglue/multibuy/handler/http"
	"github.com/tapglue/multibuy/platform/cache"
	"github.com/tapglue/multibuy/platform/clock"
	"github.com/tapglue/multibuy/platform/metrics"
	"github.com/tapglue/multibuy/platform/settings"
	"github.com/tapglue/multibuy/service/counter"
)

// Logging and telemetry identifiers.
const (
	component        = "multibuy"
	namespaceService = "service"
	namespaceCounter = "multi_buy"
	storeCache       = "memory"
)

// Versions.
const (
	versionCurrent = "v1"
)

// Timeouts
const (
	defaultReadTimeout     = 2 * time.Second
	defaultShutdownTimeout = 5 * time.Second
	defaultWriteTimeout    = 3 * time.Second
)

// Buildtime vars.
var (
	revision = "0000000-dev"
)

func main() {
	var (
		begin = time.Now()

		configFile     = flag.String("config.file", "", "Optional YAML settings file, overridden by MB_ environment variables")
		keyMaxLen      = flag.Int("key.max-len", 0, "Reject keys longer than this many bytes, 0 disables the check")
		keyRejectEmpty = flag.Bool("key.reject-empty", false, "Reject empty keys instead of counting them")
		listenAddr     = flag.String("listen.addr", settings.DefaultListen, "HTTP bind address for the counter API")
		logLevel       = flag.String("log.level", settings.DefaultLog, "Log level: debug, info, warn or error")
		cacheShards    = flag.Int("cache.shards", cache.DefaultShards, "Number of lock shards of the counter cache")
		cacheStrategy  = flag.String("cache.strategy", string(cache.StrategySweep), "Expiry strategy: sweep or deferred")
		cacheSweep     = flag.Duration("cache.sweep-interval", 0, "Interval between sweeps, defaults to the TTL")
		cacheTTL       = flag.Duration("cache.ttl", 0, "Time-to-live of counters, 0 selects the strategy default")
		telemetryAddr  = flag.String("telemetry.addr", settings.DefaultMetricsListen, "HTTP bind address where prometheus telemetry is exposed")
	)
	flag.Parse()

	s, err := settings.Load(*configFile, os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "settings: %s\n", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "cache.shards":
			s.Shards = *cacheShards
		case "cache.strategy":
			s.Strategy = *cacheStrategy
		case "cache.sweep-interval":
			s.SweepInterval = *cacheSweep
		case "cache.ttl":
			s.TTL = *cacheTTL
		case "key.max-len":
			s.MaxKeyLen = *keyMaxLen
		case "key.reject-empty":
			s.RejectEmptyKeys = *keyRejectEmpty
		case "listen.addr":
			s.Listen = *listenAddr
		case "log.level":
			s.Log = *logLevel
		case "telemetry.addr":
			s.MetricsListen = *telemetryAddr
		}
	})

	if err := s.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "settings: %s\n", err)
		os.Exit(1)
	}

	// Setup logging.
	logger := log.With(
		log.NewJSONLogger(log.NewSyncWriter(os.Stdout)),
		"caller", log.DefaultCaller,
		"component", component,
		"revision", revision,
		"ts", log.DefaultTimestampUTC,
	)

	hostname, err := os.Hostname()
	if err != nil {
		_ = level.Warn(logger).Log("err", err, "lifecycle", "start")
	}

	logger = level.NewFilter(
		log.With(logger, "host", hostname),
		allowLevel(s.Log),
	)

	// Setup instrumentation.
	serviceErrCount, serviceOpCount, serviceOpLatency := metrics.KeyMetrics(
		namespaceService,
		metrics.FieldComponent,
		metrics.FieldMethod,
		metrics.FieldService,
		metrics.FieldStore,
	)

	hitCount, cacheSize := metrics.CounterMetrics(
		namespaceCounter,
		metrics.FieldComponent,
		metrics.FieldService,
		metrics.FieldStore,
	)

	cleanupRemoved, cleanupLatency := metrics.CleanupMetrics(
		namespaceCounter,
		metrics.FieldComponent,
		metrics.FieldStrategy,
	)

	// Setup cache and service.
	counterCache := cache.New(clock.System(), s.CacheConfig())
	cacheConfig := counterCache.Config()

	var counters counter.Service
	counters = counter.CacheService(counterCache)
	counters = counter.InstrumentServiceMiddleware(
		component,
		storeCache,
		serviceErrCount,
		hitCount,
		cacheSize,
		serviceOpCount,
		serviceOpLatency,
	)(counters)
	counters = counter.LogMiddleware(logger, storeCache)(counters)
	counters = counter.ValidateMiddleware(counter.KeyPolicy{
		RejectEmpty: s.RejectEmptyKeys,
		MaxLen:      s.MaxKeyLen,
	})(counters)

	// Setup middlewares.
	withConstraints := handler.Chain(
		handler.CtxPrepare(versionCurrent),
		handler.CtxRequestID(),
		handler.Log(logger),
		handler.Instrument(component),
		handler.SecureHeaders(),
		handler.DebugHeaders(revision, hostname),
		handler.ValidateContent(),
	)

	// Setup Router.
	router := mux.NewRouter().StrictSlash(true)

	router.Methods("GET").Path(`/health`).Name("healthcheck").HandlerFunc(
		handler.Wrap(
			handler.CtxPrepare(versionCurrent),
			handler.Health(core.CounterSize(counters)),
		),
	)

	current := router.PathPrefix(fmt.Sprintf("/%s", versionCurrent)).Subrouter()

	current.Methods("POST").Path(`/increment`).Name("counterIncrement").HandlerFunc(
		handler.Wrap(
			withConstraints,
			handler.CounterIncrement(core.CounterIncrement(counters)),
		),
	)

	current.Methods("POST").Path(`/get`).Name("counterGet").HandlerFunc(
		handler.Wrap(
			withConstraints,
			handler.CounterGet(core.CounterGet(counters)),
		),
	)

	// Setup servers.
	server := &http.Server{
		Addr:         s.Listen,
		Handler:      router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}

	telemetryMux := http.NewServeMux()
	telemetryMux.Handle("/metrics", promhttp.Handler())

	telemetry := &http.Server{
		Addr:    s.MetricsListen,
		Handler: telemetryMux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// A broken scrape endpoint is reported but does not take the API down.
	g.Go(func() error {
		_ = level.Info(logger).Log(
			"duration", time.Since(begin).Nanoseconds(),
			"lifecycle", "start",
			"listen", s.MetricsListen,
			"sub", "telemetry",
		)

		err := telemetry.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = level.Error(logger).Log("err", err, "lifecycle", "abort", "sub", "telemetry")
		}

		return nil
	})

	g.Go(func() error {
		_ = level.Info(logger).Log(
			"lifecycle", "start",
			"strategy", cacheConfig.Strategy,
			"sub", "cache",
			"sweep_interval", cacheConfig.SweepInterval,
			"ttl", cacheConfig.TTL,
		)

		return counterCache.Run(ctx, counter.CleanupFunc(
			logger,
			counters,
			component,
			cacheConfig.Strategy,
			cleanupRemoved,
			cleanupLatency,
		))
	})

	g.Go(func() error {
		ln, err := net.Listen("tcp", s.Listen)
		if err != nil {
			return fmt.Errorf("api listen '%s': %s", s.Listen, err)
		}

		_ = level.Info(logger).Log(
			"duration", time.Since(begin).Nanoseconds(),
			"lifecycle", "start",
			"listen", s.Listen,
			"sub", "api",
		)

		err = server.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()

		_ = telemetry.Shutdown(shutdownCtx)

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		_ = level.Error(logger).Log("err", err, "lifecycle", "abort", "sub", "api")
		os.Exit(1)
	}

	_ = level.Info(logger).Log("lifecycle", "stop")
}

func allowLevel(l string) level.Option {
	switch strings.ToLower(l) {
	case settings.LevelDebug:
		return level.AllowDebug()
	case settings.LevelWarn:
		return level.AllowWarn()
	case settings.LevelError:
		return level.AllowError()
	}

	return level.AllowInfo()
}
