package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-kit/log"
	"github.com/gorilla/mux"

	"github.com/tapglue/multibuy/core"
	"github.com/tapglue/multibuy/platform/cache"
	"github.com/tapglue/multibuy/platform/clock"
	"github.com/tapglue/multibuy/service/counter"
)

const testVersion = "v1"

func testRouter(t *testing.T, policy counter.KeyPolicy, ms ...Middleware) *mux.Router {
	var (
		counters = counter.ValidateMiddleware(policy)(
			counter.CacheService(
				cache.New(clock.System(), cache.DefaultConfig(cache.StrategySweep)),
			),
		)
		chain = Chain(append([]Middleware{
			CtxPrepare(testVersion),
			CtxRequestID(),
			Log(log.NewJSONLogger(io.Discard)),
			SecureHeaders(),
			ValidateContent(),
		}, ms...)...)
		router = mux.NewRouter()
	)

	router.Methods("GET").Path("/health").Name("health").HandlerFunc(
		Wrap(chain, Health(core.CounterSize(counters))),
	)

	current := router.PathPrefix("/" + testVersion).Subrouter()

	current.Methods("POST").Path("/increment").Name("counterIncrement").HandlerFunc(
		Wrap(chain, CounterIncrement(core.CounterIncrement(counters))),
	)
	current.Methods("POST").Path("/get").Name("counterGet").HandlerFunc(
		Wrap(chain, CounterGet(core.CounterGet(counters))),
	)

	return router
}

func doCount(t *testing.T, h http.Handler, path, key string) (int, uint32) {
	t.Helper()

	body, err := json.Marshal(&payloadKey{Key: key})
	if err != nil {
		t.Fatal(err)
	}

	var (
		req = httptest.NewRequest("POST", path, bytes.NewReader(body))
		rec = httptest.NewRecorder()
	)

	req.Header.Set("Content-Type", "application/json")

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		return rec.Code, 0
	}

	p := payloadCount{}

	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatal(err)
	}

	return rec.Code, p.Count
}
