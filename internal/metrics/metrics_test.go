package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollerMetrics(t *testing.T) {
	reg := NewRegistry()
	m := NewPollerMetrics(reg)

	at := time.Unix(1700000000, 0)
	m.ObservePoll(true, 20*time.Millisecond, at)
	m.ObservePoll(false, 5*time.Millisecond, at.Add(time.Second))
	m.ObserveSkip()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PollTotal.WithLabelValues("healthy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PollTotal.WithLabelValues("unhealthy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SkippedTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.EndpointUp))
	assert.Equal(t, float64(1700000001), testutil.ToFloat64(m.LastCheckEpoch))
}

func TestPollerMetrics_NilSafe(t *testing.T) {
	var m *PollerMetrics
	assert.NotPanics(t, func() {
		m.ObservePoll(true, time.Millisecond, time.Now())
		m.ObserveSkip()
	})
}

func TestHandler(t *testing.T) {
	reg := NewRegistry()
	NewPollerMetrics(reg).ObserveSkip()

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "mcpstatus_poll_skipped_total 1")
}

func TestNotifyMetrics(t *testing.T) {
	reg := NewRegistry()
	m := NewNotifyMetrics(reg)

	m.ObserveNotify("endpoint.down", "success")
	m.ObserveNotify("endpoint.down", "success")
	m.ObserveNotify("endpoint.up", "failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.NotifyTotal.WithLabelValues("endpoint.down", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotifyTotal.WithLabelValues("endpoint.up", "failed")))

	var nilm *NotifyMetrics
	assert.NotPanics(t, func() { nilm.ObserveNotify("endpoint.up", "success") })
}
