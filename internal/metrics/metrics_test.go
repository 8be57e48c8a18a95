package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCache(t *testing.T) {
	before := testutil.ToFloat64(cacheRequests.WithLabelValues("lru", "hit"))
	ObserveCache("lru", true)
	ObserveCache("lru", false)

	assert.Equal(t, before+1, testutil.ToFloat64(cacheRequests.WithLabelValues("lru", "hit")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(cacheRequests.WithLabelValues("lru", "miss")), 1.0)
}

func TestObserveLatencies(t *testing.T) {
	ObserveFetch("ok", 120*time.Millisecond)
	ObserveRender(300 * time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(fetchLatency))
	assert.Equal(t, 1, testutil.CollectAndCount(renderLatency))
}

func TestLatencyHandler(t *testing.T) {
	h := LatencyHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tides/unknown.jpg", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(requestLatency), 1)
}
