package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Pusher 带签名与重试的 webhook 发送器
type Pusher struct {
	Client  *http.Client
	APIKey  string
	Secret  string
	Retries int
	Backoff []time.Duration
}

// NewPusher 创建发送器；client 为 nil 时使用 5s 超时的默认客户端
func NewPusher(client *http.Client, apiKey, secret string) *Pusher {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Pusher{
		Client:  client,
		APIKey:  apiKey,
		Secret:  secret,
		Retries: 3,
		Backoff: []time.Duration{100 * time.Millisecond, 500 * time.Millisecond, time.Second, 2 * time.Second},
	}
}

// defaultBackoff Backoff 为空时的重试间隔
const defaultBackoff = 500 * time.Millisecond

func (p *Pusher) backoff(attempt int) time.Duration {
	if len(p.Backoff) == 0 {
		return defaultBackoff
	}
	return p.Backoff[min(attempt, len(p.Backoff)-1)]
}

// SendJSON 发送 JSON 负载，自动添加签名头；仅对网络错误与 5xx 重试
func (p *Pusher) SendJSON(ctx context.Context, endpoint string, payload any) (int, error) {
	if p == nil || p.Client == nil {
		return 0, errors.New("nil pusher")
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return 0, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	ts := time.Now().Unix()
	nonce := uuid.NewString()
	sig := SignHMAC(p.Secret, buildCanonical(http.MethodPost, u.Path, ts, nonce, hashHex(body)))

	var (
		code    int
		lastErr error
	)
	for attempt := 0; attempt <= p.Retries; attempt++ {
		// 每次重试重新构造请求，body 不可复用
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return 0, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Api-Key", p.APIKey)
		req.Header.Set("X-Signature", sig)
		req.Header.Set("X-Timestamp", strconv.FormatInt(ts, 10))
		req.Header.Set("X-Nonce", nonce)

		resp, err := p.Client.Do(req)
		if err != nil {
			lastErr = err
		} else {
			code = resp.StatusCode
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
			_ = resp.Body.Close()
			if code >= 200 && code < 300 {
				return code, nil
			}
			lastErr = fmt.Errorf("webhook returned http %d", code)
			if code < 500 {
				return code, lastErr
			}
		}
		if attempt == p.Retries {
			break
		}
		select {
		case <-ctx.Done():
			return code, ctx.Err()
		case <-time.After(p.backoff(attempt)):
		}
	}
	return code, lastErr
}
