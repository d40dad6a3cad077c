package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dedupKeyPrefix = "mcpstatus:notify:dedup"

	// DefaultDedupWindow 默认去重窗口
	DefaultDedupWindow = time.Minute
)

// Deduper 基于 Redis SetNX 的跨实例去重：同一端点同一事件在一个窗口内只发送一次
type Deduper struct {
	redis  redis.Cmdable
	window time.Duration
}

// NewDeduper 创建去重器
func NewDeduper(client redis.Cmdable, window time.Duration) *Deduper {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &Deduper{redis: client, window: window}
}

// Claim 尝试占有事件的发送权，返回 false 表示其他实例已发送
func (d *Deduper) Claim(ctx context.Context, ev Event) (bool, error) {
	if d == nil || d.redis == nil {
		return false, errors.New("deduper not initialized")
	}
	ok, err := d.redis.SetNX(ctx, d.key(ev), ev.ID, d.window).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (d *Deduper) key(ev Event) string {
	bucket := ev.Timestamp / max(int64(d.window/time.Second), 1)
	return fmt.Sprintf("%s:%s:%s:%d", dedupKeyPrefix, ev.Endpoint, ev.Event, bucket)
}
