// Package metrics exposes Prometheus instruments for dataset loads and
// API requests on a registry owned by the application.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/hivdash/internal/core"
)

const namespace = "hivdash"

// Load results used as the "result" label.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultParse    = "parse_error"
	ResultSchema   = "schema_mismatch"
	ResultInvalid  = "invalid"
	ResultError    = "error"
)

// Metrics holds every instrument. It implements core.LoadObserver.
type Metrics struct {
	registry *prometheus.Registry

	loads        *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	loadedRows   *prometheus.GaugeVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates the instruments on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Dataset loads by age group and result.",
		}, []string{"age_group", "result"}),
		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Time spent reading and merging one age-group folder.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"age_group"}),
		loadedRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loaded_rows",
			Help:      "Rows in the most recent successful load.",
		}, []string{"age_group"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route pattern and status code.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.loads,
		m.loadDuration,
		m.loadedRows,
		m.requests,
		m.requestDuration,
	)
	return m
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// WatchLoads exports the number of loads holding a limiter slot.
// Call it at most once per Metrics.
func (m *Metrics) WatchLoads(l *core.LoadLimiter) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "loads_in_flight",
		Help:      "Dataset loads currently holding a slot.",
	}, func() float64 { return float64(l.Active()) }))
}

// ObserveLoad records one dataset load.
func (m *Metrics) ObserveLoad(ageGroup string, elapsed time.Duration, rows int, err error) {
	result := LoadResult(err)
	if result == ResultInvalid {
		// Invalid names are caller controlled; collapse them into one label.
		ageGroup = "invalid"
	}
	m.loads.WithLabelValues(ageGroup, result).Inc()
	m.loadDuration.WithLabelValues(ageGroup).Observe(elapsed.Seconds())
	if err == nil {
		m.loadedRows.WithLabelValues(ageGroup).Set(float64(rows))
	}
}

// LoadResult classifies a load error into a result label.
func LoadResult(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, core.ErrInvalidAgeGroup):
		return ResultInvalid
	case errors.Is(err, core.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, core.ErrParse):
		return ResultParse
	case errors.Is(err, core.ErrSchemaMismatch):
		return ResultSchema
	default:
		return ResultError
	}
}

// Middleware records request counts and latency by chi route pattern.
// Must be mounted inside a chi router so the pattern is known.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
