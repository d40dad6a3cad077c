package healthpoll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// 健康响应体读取上限
const maxBodyBytes = 64 << 10

var (
	ErrInvalidEndpoint = errors.New("healthpoll: endpoint must be an absolute http(s) URL")
	ErrInvalidInterval = errors.New("healthpoll: interval must be > 0")
)

// Prober 执行一次健康探测，任何失败都体现在返回的快照里
type Prober interface {
	Probe(ctx context.Context, endpoint string) Status
}

// ProberFunc 函数适配器
type ProberFunc func(ctx context.Context, endpoint string) Status

func (f ProberFunc) Probe(ctx context.Context, endpoint string) Status { return f(ctx, endpoint) }

// HTTPProber 基于 net/http 的探测器
type HTTPProber struct {
	Client    *http.Client
	UserAgent string
	Now       func() time.Time
}

// NewHTTPProber 创建探测器；client 为 nil 时使用带超时的默认客户端
func NewHTTPProber(client *http.Client, userAgent string) *HTTPProber {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPProber{Client: client, UserAgent: userAgent, Now: time.Now}
}

// Probe GET endpoint，2xx 视为健康
func (h *HTTPProber) Probe(ctx context.Context, endpoint string) Status {
	now := h.Now
	if now == nil {
		now = time.Now
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return failedStatus(now(), KindTransport, err.Error())
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return failedStatus(now(), classify(err), err.Error())
	}
	defer resp.Body.Close()

	// 超出上限的部分直接丢弃；读取中断属于传输失败
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return failedStatus(now(), classify(err), err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failedStatus(now(), KindStatus, statusMessage(resp, body))
	}
	return healthyStatus(now(), parseDiagnostics(body))
}

func classify(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return KindTimeout
	}
	return KindTransport
}

// ValidateEndpoint 校验轮询地址
func ValidateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}
	return nil
}

// EndpointFromBase 由服务基地址拼出 /health 地址
func EndpointFromBase(base string) (string, error) {
	if err := ValidateEndpoint(base); err != nil {
		return "", err
	}
	u, _ := url.Parse(strings.TrimRight(base, "/"))
	return u.JoinPath("health").String(), nil
}
