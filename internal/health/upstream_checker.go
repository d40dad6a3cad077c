package health

import (
	"context"
	"time"

	"github.com/taoyao-code/mcp-status/internal/healthpoll"
)

// SnapshotSource 提供最近一次轮询快照（*healthpoll.Poller 满足）
type SnapshotSource interface {
	Latest() healthpoll.Status
}

// UpstreamChecker 将上游端点的轮询结果作为一个组件上报。
// 上游不可用只算降级：本服务仍能响应。
type UpstreamChecker struct {
	name   string
	source SnapshotSource
}

// NewUpstreamChecker 创建上游检查器
func NewUpstreamChecker(name string, source SnapshotSource) *UpstreamChecker {
	if name == "" {
		name = "upstream"
	}
	return &UpstreamChecker{name: name, source: source}
}

// Name 返回检查器名称
func (c *UpstreamChecker) Name() string {
	return c.name
}

// Check 读取快照，不发起网络请求
func (c *UpstreamChecker) Check(ctx context.Context) CheckResult {
	st := c.source.Latest()
	switch st.State() {
	case healthpoll.StateUnknown:
		return CheckResult{Status: StatusDegraded, Message: "no poll completed yet"}
	case healthpoll.StateUnhealthy:
		return CheckResult{
			Status:  StatusDegraded,
			Message: st.Error,
			Details: map[string]any{
				"kind":       string(st.Kind),
				"checked_at": st.CheckedAt.Format(time.RFC3339),
			},
		}
	default:
		details := make(map[string]any, len(st.Diagnostics)+1)
		for k, v := range st.Diagnostics {
			details[k] = v
		}
		details["checked_at"] = st.CheckedAt.Format(time.RFC3339)
		return CheckResult{Status: StatusHealthy, Message: "ok", Details: details}
	}
}
