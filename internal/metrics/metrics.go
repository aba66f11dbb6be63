package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "finos"

// Metrics holds the collectors exported at /metrics
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	answers       *prometheus.CounterVec
	rateLimited   prometheus.Counter
	summaryBuilds *prometheus.CounterVec
}

// New registers every collector on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		answers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ask_answers_total",
				Help:      "Answered questions by source and whether a figure was computed",
			},
			[]string{"source", "computed"},
		),
		rateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ask_rate_limited_total",
				Help:      "Questions rejected by the per-owner rate limiter",
			},
		),
		summaryBuilds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "summary_builds_total",
				Help:      "Summary reports built by output format",
			},
			[]string{"format"},
		),
	}
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(route, method, status string, seconds float64) {
	m.httpRequests.WithLabelValues(route, method, status).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(seconds)
}

// ObserveAnswer records one answered question
func (m *Metrics) ObserveAnswer(source string, computed bool) {
	label := "false"
	if computed {
		label = "true"
	}
	m.answers.WithLabelValues(source, label).Inc()
}

// ObserveRateLimited records one rejected question
func (m *Metrics) ObserveRateLimited() {
	m.rateLimited.Inc()
}

// ObserveSummary records one built summary
func (m *Metrics) ObserveSummary(format string) {
	m.summaryBuilds.WithLabelValues(format).Inc()
}

// RegisterSessionGauge exports the number of open websocket sessions
func (m *Metrics) RegisterSessionGauge(count func() int) {
	promauto.With(m.registry).NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_sessions",
			Help:      "Open websocket sessions",
		},
		func() float64 { return float64(count()) },
	)
}
