package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/bananamath/internal/model"
)

func TestCountersIncrement(t *testing.T) {
	m := New()

	m.RecordAnswer(true)
	m.RecordAnswer(true)
	m.RecordAnswer(false)
	m.RecordPuzzle(model.TierEasy)
	m.RecordLogin(LoginLocked)
	m.RecordRegistration(true)
	m.RecordRateLimited()
	m.SetActiveSessions(4)

	assert.Equal(t, 2.0, promtest.ToFloat64(m.answersTotal.WithLabelValues("correct")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.answersTotal.WithLabelValues("incorrect")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.puzzlesTotal.WithLabelValues("easy")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.loginsTotal.WithLabelValues(LoginLocked)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.registrations.WithLabelValues(LoginSuccess)))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.rateLimited))
	assert.Equal(t, 4.0, promtest.ToFloat64(m.activeSessions))
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.RecordRateLimited()

	assert.Equal(t, 1.0, promtest.ToFloat64(a.rateLimited))
	assert.Equal(t, 0.0, promtest.ToFloat64(b.rateLimited))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordAnswer(true)
		m.RecordRequest(http.MethodGet, "/x", http.StatusOK, time.Millisecond)
		m.SetActiveSessions(1)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordRequest(http.MethodGet, "/api/v1/health", http.StatusOK, 5*time.Millisecond)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `http_requests_total{endpoint="/api/v1/health",method="GET",status="200"} 1`)
}
