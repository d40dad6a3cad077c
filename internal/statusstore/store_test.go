package statusstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/taoyao-code/mcp-status/internal/healthpoll"
)

func sample() healthpoll.Status {
	return healthpoll.Status{
		Healthy:   true,
		CheckedAt: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
		Diagnostics: map[string]string{
			healthpoll.DiagTransportMode: "sse",
			healthpoll.DiagAPIURL:        "http://x",
		},
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	st := sample()
	require.NoError(t, s.Save(ctx, st))
	st.Diagnostics[healthpoll.DiagAPIURL] = "mutated"

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "http://x", got.Diagnostic(healthpoll.DiagAPIURL))
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	s := NewRedisStore(client, "mcpstatus:snapshot", time.Minute)

	st := sample()
	data, err := json.Marshal(st)
	require.NoError(t, err)

	mock.ExpectSet("mcpstatus:snapshot", string(data), time.Minute).SetVal("OK")
	require.NoError(t, s.Save(ctx, st))

	mock.ExpectGet("mcpstatus:snapshot").SetVal(string(data))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.Healthy)
	assert.True(t, st.CheckedAt.Equal(got.CheckedAt))
	assert.Equal(t, st.Diagnostics, got.Diagnostics)

	mock.ExpectGet("mcpstatus:snapshot").RedisNil()
	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectGet("mcpstatus:snapshot").SetErr(errors.New("timeout"))
	_, err = s.Load(ctx)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	mock.ExpectGet("mcpstatus:snapshot").SetVal("not json")
	_, err = s.Load(ctx)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

type failingStore struct{}

func (failingStore) Save(context.Context, healthpoll.Status) error { return errors.New("boom") }
func (failingStore) Load(context.Context) (healthpoll.Status, error) {
	return healthpoll.Status{}, errors.New("boom")
}

func TestSinkAndFanout(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	mem := NewMemoryStore()

	var seen int
	fn := Fanout(
		Sink(context.Background(), mem, nil),
		Sink(context.Background(), failingStore{}, zap.New(core)),
		nil,
		func(healthpoll.Status) { seen++ },
	)
	fn(sample())

	_, err := mem.Load(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, seen)
	assert.Equal(t, 1, logs.Len())
}

func TestStatusRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mem := NewMemoryStore()
	r := gin.New()
	RegisterRoutes(r, mem)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	require.NoError(t, mem.Save(context.Background(), sample()))
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["state"])
	assert.Equal(t, true, body["healthy"])
	assert.Equal(t, "sse", body["transport_mode"])
	assert.Equal(t, "http://x", body["api_url"])

	r2 := gin.New()
	RegisterRoutes(r2, failingStore{})
	rr = httptest.NewRecorder()
	r2.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
