package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	cacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "cache_requests_total",
			Subsystem: "tidechart",
			Help:      "Prediction cache lookups by layer and result.",
		},
		[]string{"layer", "result"},
	)

	fetchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "fetch_latency_seconds",
			Subsystem: "tidechart",
			Help:      "NOAA prediction fetch latencies in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0},
		},
		[]string{"result"},
	)

	renderLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:      "render_latency_seconds",
			Subsystem: "tidechart",
			Help:      "Chart render and encode latencies in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.2, 0.4, 0.8, 1.6, 3.2},
		},
	)

	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "request_latency",
			Subsystem: "tidechart",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.2, 0.4, 0.8, 1.0, 2.0, 4.0, 8.0},
		},
		[]string{"verb", "path", "code"},
	)
)

func init() {
	prometheus.MustRegister(
		cacheRequests,
		fetchLatency,
		renderLatency,
		requestLatency,
	)
}

func ObserveCache(layer string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheRequests.With(prometheus.Labels{"layer": layer, "result": result}).Inc()
}

func ObserveFetch(result string, latency time.Duration) {
	fetchLatency.With(prometheus.Labels{"result": result}).Observe(latency.Seconds())
}

func ObserveRender(latency time.Duration) {
	renderLatency.Observe(latency.Seconds())
}

// statusRecorder remembers the status code written by the wrapped handler
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// LatencyHandler observes request latency labelled by method, path and status
func LatencyHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}

		// Panics in next are reported as 500 and re-thrown.
		defer func() {
			if err := recover(); err != nil {
				requestLatency.With(prometheus.Labels{
					"verb": r.Method, "path": r.URL.Path, "code": "500",
				}).Observe(time.Since(t).Seconds())
				panic(err)
			}
			requestLatency.With(prometheus.Labels{
				"verb": r.Method, "path": r.URL.Path, "code": strconv.Itoa(rec.code),
			}).Observe(time.Since(t).Seconds())
		}()

		next.ServeHTTP(rec, r)
	})
}
