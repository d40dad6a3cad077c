package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(agg *Aggregator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterHTTPRoutes(r, agg, Info{TransportMode: "sse", APIURL: "http://api:8000"})
	return r
}

func get(t *testing.T, r http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return rr, body
}

func TestHealthRoute_Healthy(t *testing.T) {
	r := newRouter(NewAggregator(&mockChecker{"db", StatusHealthy}))

	rr, body := get(t, r, "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "sse", body["transport_mode"])
	assert.Equal(t, "http://api:8000", body["api_url"])
	assert.Contains(t, body["checks"], "db")
	assert.NotContains(t, body, "error")
}

func TestHealthRoute_DegradedStillOK(t *testing.T) {
	r := newRouter(NewAggregator(&mockChecker{"upstream", StatusDegraded}))

	rr, body := get(t, r, "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "degraded", body["status"])
}

func TestHealthRoute_Unhealthy(t *testing.T) {
	r := newRouter(NewAggregator(
		&mockChecker{"redis", StatusHealthy},
		&mockChecker{"database", StatusUnhealthy},
	))

	rr, body := get(t, r, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "database: mock", body["error"])

	rr, body = get(t, r, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, false, body["ready"])
}

func TestHealthRoute_ReadyAndLive(t *testing.T) {
	r := newRouter(NewAggregator())

	rr, body := get(t, r, "/health/ready")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, body["ready"])

	rr, body = get(t, r, "/health/live")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, body["alive"])
}
