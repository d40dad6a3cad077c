package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taoyao-code/mcp-status/internal/healthpoll"
	"github.com/taoyao-code/mcp-status/internal/metrics"
)

// 事件类型
const (
	EventDown = "endpoint.down"
	EventUp   = "endpoint.up"
)

// Event webhook 负载
type Event struct {
	ID        string         `json:"id"`
	Event     string         `json:"event"`
	Endpoint  string         `json:"endpoint"`
	Timestamp int64          `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

// Notifier 在健康状态翻转时推送 webhook。
// Update 作为轮询回调只做判定与入队，发送在 Run 中进行，不阻塞其他回调。
type Notifier struct {
	pusher   *Pusher
	url      string
	endpoint string
	log      *zap.Logger
	metrics  *metrics.NotifyMetrics
	dedup    *Deduper

	mu    sync.Mutex
	known bool
	up    bool

	queue chan Event
}

// New 创建通知器；endpoint 为被轮询的地址，写入事件负载
func New(pusher *Pusher, webhookURL, endpoint string, m *metrics.NotifyMetrics, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		pusher:   pusher,
		url:      webhookURL,
		endpoint: endpoint,
		log:      log,
		metrics:  m,
		queue:    make(chan Event, 16),
	}
}

// WithDeduper 启用跨实例去重
func (n *Notifier) WithDeduper(d *Deduper) *Notifier {
	n.dedup = d
	return n
}

// Update 接收快照。首个快照不健康时发送 down；之后仅在健康状态翻转时发送。
func (n *Notifier) Update(st healthpoll.Status) {
	if st.State() == healthpoll.StateUnknown {
		return
	}

	n.mu.Lock()
	changed := (!n.known && !st.Healthy) || (n.known && n.up != st.Healthy)
	n.known, n.up = true, st.Healthy
	n.mu.Unlock()
	if !changed {
		return
	}

	ev := n.event(st)
	select {
	case n.queue <- ev:
	default:
		n.metrics.ObserveNotify(ev.Event, "dropped")
		n.log.Warn("notify queue full, dropping event", zap.String("event", ev.Event))
	}
}

func (n *Notifier) event(st healthpoll.Status) Event {
	ev := Event{
		ID:        uuid.NewString(),
		Endpoint:  n.endpoint,
		Timestamp: st.CheckedAt.Unix(),
		Data: map[string]any{
			"transport_mode": st.Diagnostic(healthpoll.DiagTransportMode),
			"api_url":        st.Diagnostic(healthpoll.DiagAPIURL),
		},
	}
	if st.Healthy {
		ev.Event = EventUp
		return ev
	}
	ev.Event = EventDown
	ev.Data["error"] = st.Error
	ev.Data["kind"] = string(st.Kind)
	return ev
}

// Run 发送队列中的事件，直到 ctx 取消
func (n *Notifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-n.queue:
			n.send(ctx, ev)
		}
	}
}

func (n *Notifier) send(ctx context.Context, ev Event) {
	if n.dedup != nil {
		ok, err := n.dedup.Claim(ctx, ev)
		if err != nil {
			// 去重不可用时宁可重复发送
			n.log.Warn("notify dedup failed", zap.String("event", ev.Event), zap.Error(err))
		} else if !ok {
			n.metrics.ObserveNotify(ev.Event, "duplicate")
			n.log.Debug("event already sent by another instance", zap.String("event", ev.Event))
			return
		}
	}

	start := time.Now()
	code, err := n.pusher.SendJSON(ctx, n.url, ev)
	if err != nil {
		n.metrics.ObserveNotify(ev.Event, "failed")
		n.log.Warn("webhook push failed",
			zap.String("event", ev.Event),
			zap.Int("code", code),
			zap.Error(err))
		return
	}
	n.metrics.ObserveNotify(ev.Event, "success")
	n.log.Info("webhook pushed",
		zap.String("event", ev.Event),
		zap.String("id", ev.ID),
		zap.Duration("took", time.Since(start)))
}
