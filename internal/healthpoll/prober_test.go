package healthpoll

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPProber_Healthy(t *testing.T) {
	var gotReqID, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotReqID = r.Header.Get("X-Request-ID")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"transport_mode":"sse","api_url":"http://x"}`))
	}))
	defer srv.Close()

	st := NewHTTPProber(srv.Client(), "mcpstatus-test").Probe(context.Background(), srv.URL+"/health")

	assert.True(t, st.Healthy)
	assert.Equal(t, StateHealthy, st.State())
	assert.Equal(t, map[string]string{DiagTransportMode: "sse", DiagAPIURL: "http://x"}, st.Diagnostics)
	assert.Empty(t, st.Error)
	assert.False(t, st.CheckedAt.IsZero())
	assert.NotEmpty(t, gotReqID)
	assert.Equal(t, "application/json", gotAccept)
}

func TestHTTPProber_NonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"database unreachable"}`))
	}))
	defer srv.Close()

	st := NewHTTPProber(srv.Client(), "").Probe(context.Background(), srv.URL)

	assert.False(t, st.Healthy)
	assert.Equal(t, KindStatus, st.Kind)
	assert.Equal(t, "health endpoint returned 503 Service Unavailable: database unreachable", st.Error)
	assert.Nil(t, st.Diagnostics)
}

func TestHTTPProber_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	st := NewHTTPProber(nil, "").Probe(context.Background(), url+"/health")

	assert.False(t, st.Healthy)
	assert.Equal(t, KindTransport, st.Kind)
	assert.NotEmpty(t, st.Error)
	assert.Nil(t, st.Diagnostics)
}

func TestHTTPProber_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	st := NewHTTPProber(srv.Client(), "").Probe(ctx, srv.URL)

	assert.False(t, st.Healthy)
	assert.Equal(t, KindTimeout, st.Kind)
	assert.NotEmpty(t, st.Error)
}

func TestHTTPProber_TruncatedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, buf, err := w.(http.Hijacker).Hijack()
		if err != nil {
			return
		}
		defer conn.Close()
		// 声明 100 字节但只写出 17 字节后断开
		_, _ = buf.WriteString("HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: 100\r\n\r\n{\"transport_mode\":")
		_ = buf.Flush()
	}))
	defer srv.Close()

	st := NewHTTPProber(srv.Client(), "").Probe(context.Background(), srv.URL)

	assert.False(t, st.Healthy)
	assert.Equal(t, KindTransport, st.Kind)
	assert.NotEmpty(t, st.Error)
	assert.Nil(t, st.Diagnostics)
}

func TestHTTPProber_OversizedBodyTolerated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"transport_mode":"sse","pad":"` + strings.Repeat("x", maxBodyBytes) + `"}`))
	}))
	defer srv.Close()

	st := NewHTTPProber(srv.Client(), "").Probe(context.Background(), srv.URL)

	assert.True(t, st.Healthy)
	assert.Equal(t, NotAvailable, st.Diagnostic(DiagTransportMode), "truncated json is tolerated as malformed")
}

func TestEndpointFromBase(t *testing.T) {
	got, err := EndpointFromBase("http://mcp:8000")
	require.NoError(t, err)
	assert.Equal(t, "http://mcp:8000/health", got)

	got, err = EndpointFromBase("https://mcp.example.com/api/")
	require.NoError(t, err)
	assert.Equal(t, "https://mcp.example.com/api/health", got)

	_, err = EndpointFromBase("mcp:8000")
	assert.ErrorIs(t, err, ErrInvalidEndpoint)

	_, err = EndpointFromBase("ftp://mcp")
	assert.ErrorIs(t, err, ErrInvalidEndpoint)
}

func TestStatusHelpers(t *testing.T) {
	var initial Status
	assert.Equal(t, StateUnknown, initial.State())
	assert.Equal(t, NotAvailable, initial.Diagnostic(DiagAPIURL))

	failed := failedStatus(time.Now(), KindTransport, "")
	assert.Equal(t, StateUnhealthy, failed.State())
	assert.Equal(t, "health check failed", failed.Error)

	ok := healthyStatus(time.Now(), map[string]string{DiagAPIURL: "http://x"})
	clone := ok.Clone()
	clone.Diagnostics[DiagAPIURL] = "mutated"
	assert.Equal(t, "http://x", ok.Diagnostic(DiagAPIURL))
}
