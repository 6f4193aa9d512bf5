// Package metrics exposes synchronizer, content breaker and HTTP metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/goncalofm90/foodi3/internal/core/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "foodi3"

// breakerStates maps gobreaker state names to gauge values.
var breakerStates = map[string]float64{
	"closed":    0,
	"half-open": 1,
	"open":      2,
}

// PrometheusMetrics implements SyncMetricsPort on a private registry so
// tests can build as many as they like.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	loads        *prometheus.CounterVec
	writes       *prometheus.CounterVec
	breakerState *prometheus.GaugeVec
	httpDuration *prometheus.HistogramVec
}

func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favourites_loads_total",
			Help:      "Favourites index loads by outcome.",
		}, []string{"outcome"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favourites_writes_total",
			Help:      "Favourite create/delete attempts by action, item kind and outcome.",
		}, []string{"action", "kind", "outcome"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "content_breaker_state",
			Help:      "Content source circuit breaker state (0 closed, 1 half-open, 2 open).",
		}, []string{"source"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.loads,
		m.writes,
		m.breakerState,
		m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *PrometheusMetrics) ObserveLoad(outcome string) {
	m.loads.WithLabelValues(outcome).Inc()
}

func (m *PrometheusMetrics) ObserveWrite(action string, kind domain.ItemKind, outcome string) {
	k := string(kind)
	if k == "" {
		k = "unknown"
	}
	m.writes.WithLabelValues(action, k, outcome).Inc()
}

// ObserveBreakerState matches the content client's state change callback.
func (m *PrometheusMetrics) ObserveBreakerState(source, _ string, to string) {
	value, ok := breakerStates[to]
	if !ok {
		return
	}
	m.breakerState.WithLabelValues(source).Set(value)
}

// Middleware records request latency labelled by the chi route pattern.
func (m *PrometheusMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}

func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}
