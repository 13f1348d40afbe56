package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest(http.MethodPost, "/api/teams", http.StatusCreated, 20*time.Millisecond)
	m.TeamRegistered()
	m.RegistrationRejected(ReasonCapacity)
	m.RegistrationRejected(ReasonCapacity)
	m.RateLimited("/api/teams")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(http.MethodPost, "/api/teams", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistrationsTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RegistrationsRejected.WithLabelValues(ReasonCapacity)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitHits.WithLabelValues("/api/teams")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.TeamRegistered()
		m.RegistrationRejected(ReasonValidation)
		m.RateLimited("/")
	})
}
