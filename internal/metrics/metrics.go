// Package metrics exposes prometheus instruments for the game server.
// Label values are bounded: endpoints are route templates, never raw paths,
// and there are no per-user labels.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/bananamath/internal/model"
)

// Login results
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
	LoginLocked  = "locked"
)

// Metrics holds the instruments of one application instance. All methods
// are no-ops on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	puzzlesTotal   *prometheus.CounterVec
	answersTotal   *prometheus.CounterVec
	loginsTotal    *prometheus.CounterVec
	registrations  *prometheus.CounterVec
	rateLimited    prometheus.Counter
	activeSessions prometheus.Gauge
}

// New creates the instruments on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "endpoint", "status"}),

		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),

		puzzlesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "puzzles_generated_total",
			Help: "Puzzles generated, by difficulty",
		}, []string{"difficulty"}),

		answersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "answers_total",
			Help: "Answers checked, by result",
		}, []string{"result"}), // correct, incorrect

		loginsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Login attempts, by result",
		}, []string{"result"}),

		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Registration attempts, by result",
		}, []string{"result"}),

		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),

		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "game_sessions_active",
			Help: "Play sessions held in memory",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestTotal,
		m.requestLatency,
		m.puzzlesTotal,
		m.answersTotal,
		m.loginsTotal,
		m.registrations,
		m.rateLimited,
		m.activeSessions,
	)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestLatency.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
}

// RecordPuzzle counts a generated puzzle
func (m *Metrics) RecordPuzzle(tier model.Tier) {
	if m == nil {
		return
	}
	m.puzzlesTotal.WithLabelValues(string(tier)).Inc()
}

// RecordAnswer counts a checked answer
func (m *Metrics) RecordAnswer(correct bool) {
	if m == nil {
		return
	}
	result := "incorrect"
	if correct {
		result = "correct"
	}
	m.answersTotal.WithLabelValues(result).Inc()
}

// RecordLogin counts a login attempt; result is one of the Login constants
func (m *Metrics) RecordLogin(result string) {
	if m == nil {
		return
	}
	m.loginsTotal.WithLabelValues(result).Inc()
}

// RecordRegistration counts a registration attempt
func (m *Metrics) RecordRegistration(ok bool) {
	if m == nil {
		return
	}
	result := LoginFailure
	if ok {
		result = LoginSuccess
	}
	m.registrations.WithLabelValues(result).Inc()
}

// RecordRateLimited counts a request rejected by the rate limiter
func (m *Metrics) RecordRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// SetActiveSessions updates the play session gauge
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
