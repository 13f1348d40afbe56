package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// Rejection reasons recorded for refused team registrations.
const (
	ReasonCapacity   = "capacity"
	ReasonValidation = "validation"
	ReasonDuplicate  = "duplicate"
)

// Metrics holds the collectors exported on /metrics.
// A nil *Metrics records nothing.
type Metrics struct {
	RequestsTotal         *prometheus.CounterVec
	RequestDuration       *prometheus.HistogramVec
	RateLimitHits         *prometheus.CounterVec
	RegistrationsTotal    prometheus.Counter
	RegistrationsRejected *prometheus.CounterVec
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hackathon",
			Subsystem: "api",
			Name:      "http_requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hackathon",
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
		RateLimitHits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hackathon",
			Subsystem: "api",
			Name:      "rate_limit_hits_total",
			Help:      "Number of rate-limited responses",
		}, []string{"route"}),
		RegistrationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "hackathon",
			Name:      "team_registrations_total",
			Help:      "Total number of teams registered",
		}),
		RegistrationsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hackathon",
			Name:      "team_registrations_rejected_total",
			Help:      "Team registrations refused, by reason",
		}, []string{"reason"}),
	}
}

// ObserveRequest records one handled request.
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{"method": method, "route": route, "status": strconv.Itoa(status)}
	m.RequestsTotal.With(labels).Inc()
	m.RequestDuration.With(labels).Observe(duration.Seconds())
}

// RateLimited records a request refused by the rate limiter.
func (m *Metrics) RateLimited(route string) {
	if m == nil {
		return
	}
	m.RateLimitHits.WithLabelValues(route).Inc()
}

// TeamRegistered records a successful registration.
func (m *Metrics) TeamRegistered() {
	if m == nil {
		return
	}
	m.RegistrationsTotal.Inc()
}

// RegistrationRejected records a refused registration.
func (m *Metrics) RegistrationRejected(reason string) {
	if m == nil {
		return
	}
	m.RegistrationsRejected.WithLabelValues(reason).Inc()
}
