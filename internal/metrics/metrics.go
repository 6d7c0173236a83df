// Package metrics owns the Prometheus registry of the service.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors.  All methods are safe on a nil
// receiver so callers that run without metrics need no checks.
type Metrics struct {
	reg *prometheus.Registry

	submits   *prometheus.CounterVec
	decisions *prometheus.CounterVec
	clears    *prometheus.CounterVec
	cleared   prometheus.Counter
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
}

// New creates a private registry with the process and Go collectors and
// the service's own counters.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		submits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reservation_submits_total",
			Help: "Reservation submissions by outcome.",
		}, []string{"outcome"}),
		decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reservation_decisions_total",
			Help: "Approve/reject decisions by outcome.",
		}, []string{"outcome"}),
		clears: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reservation_clears_total",
			Help: "Bulk clear operations by outcome.",
		}, []string{"outcome"}),
		cleared: f.NewCounter(prometheus.CounterOpts{
			Name: "reservation_cleared_rows_total",
			Help: "Reservations removed by clear-by-status.",
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route"}),
	}
}

func (m *Metrics) ObserveSubmit(outcome string) {
	if m != nil {
		m.submits.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveDecide(outcome string) {
	if m != nil {
		m.decisions.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) ObserveClear(outcome string) {
	if m != nil {
		m.clears.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) AddCleared(n int64) {
	if m != nil && n > 0 {
		m.cleared.Add(float64(n))
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, code int, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(route).Observe(seconds)
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
