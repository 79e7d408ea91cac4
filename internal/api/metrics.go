package api

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	kerrors "github.com/matzehuels/kemeny/pkg/errors"
	"github.com/matzehuels/kemeny/pkg/observability"
)

// Metrics implements the observability hooks on Prometheus collectors.
type Metrics struct {
	solveDuration *prometheus.HistogramVec
	solves        *prometheus.CounterVec
	cacheEvents   *prometheus.CounterVec
	cacheBytes    *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	httpRequests  *prometheus.CounterVec
	httpInFlight  prometheus.Gauge
}

var (
	_ observability.SolverHooks = (*Metrics)(nil)
	_ observability.CacheHooks  = (*Metrics)(nil)
	_ observability.HTTPHooks   = (*Metrics)(nil)
)

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		solveDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kemeny_solve_duration_seconds",
				Help:    "Time spent in a single aggregation method.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 12),
			},
			[]string{"method", "status"},
		),
		solves: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kemeny_solves_total",
				Help: "Aggregation method invocations by outcome code.",
			},
			[]string{"method", "status"},
		),
		cacheEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kemeny_cache_events_total",
				Help: "Result cache hits, misses and writes.",
			},
			[]string{"method", "event"},
		),
		cacheBytes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kemeny_cache_written_bytes_total",
				Help: "Bytes written to the result cache.",
			},
			[]string{"method"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kemeny_http_request_duration_seconds",
				Help:    "HTTP request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kemeny_http_requests_total",
				Help: "HTTP requests by status code.",
			},
			[]string{"method", "route", "code"},
		),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "kemeny_http_requests_in_flight",
			Help: "Requests currently being served.",
		}),
	}
}

// Install registers m as the process-wide observability hooks.
func (m *Metrics) Install() {
	observability.SetSolverHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func (m *Metrics) OnSolveStart(context.Context, string, int, int) {}

func (m *Metrics) OnSolveComplete(_ context.Context, method string, _ int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = string(kerrors.GetCode(err))
		if status == "" {
			status = string(kerrors.ErrCodeInternal)
		}
	}
	m.solveDuration.WithLabelValues(method, status).Observe(d.Seconds())
	m.solves.WithLabelValues(method, status).Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, method string) {
	m.cacheEvents.WithLabelValues(method, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, method string) {
	m.cacheEvents.WithLabelValues(method, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, method string, size int) {
	m.cacheEvents.WithLabelValues(method, "set").Inc()
	m.cacheBytes.WithLabelValues(method).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.httpInFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.httpInFlight.Dec()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
