package healthpoll

import (
	"maps"
	"time"
)

// NotAvailable 诊断字段缺失时的占位值
const NotAvailable = "N/A"

// 诊断字段名（对外统一使用 camelCase）
const (
	DiagTransportMode = "transportMode"
	DiagAPIURL        = "apiUrl"
)

// State 快照的展示状态
type State string

const (
	StateUnknown   State = "unknown"   // 首次轮询完成之前
	StateHealthy   State = "healthy"   // 最近一次轮询成功
	StateUnhealthy State = "unhealthy" // 最近一次轮询失败
)

// FailureKind 失败分类
type FailureKind string

const (
	KindTransport FailureKind = "transport" // 网络不可达、连接被拒绝等
	KindTimeout   FailureKind = "timeout"   // 请求超时
	KindStatus    FailureKind = "status"    // 非 2xx 响应
)

// Status 一次轮询的不可变快照。
// 完成的快照中 Diagnostics 与 Error 恰好有一个存在；两者都为空只出现在首次轮询之前。
type Status struct {
	Healthy     bool              `json:"healthy" yaml:"healthy"`
	CheckedAt   time.Time         `json:"checked_at" yaml:"checked_at"`
	Diagnostics map[string]string `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Error       string            `json:"error,omitempty" yaml:"error,omitempty"`
	Kind        FailureKind       `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// State 返回快照所处状态
func (s Status) State() State {
	switch {
	case s.CheckedAt.IsZero():
		return StateUnknown
	case s.Healthy:
		return StateHealthy
	default:
		return StateUnhealthy
	}
}

// Diagnostic 读取诊断字段，缺失时返回 N/A
func (s Status) Diagnostic(key string) string {
	if v, ok := s.Diagnostics[key]; ok {
		return v
	}
	return NotAvailable
}

// Clone 深拷贝，避免调用方修改轮询器内部的 map
func (s Status) Clone() Status {
	if s.Diagnostics != nil {
		s.Diagnostics = maps.Clone(s.Diagnostics)
	}
	return s
}

func healthyStatus(at time.Time, diag map[string]string) Status {
	return Status{Healthy: true, CheckedAt: at, Diagnostics: diag}
}

func failedStatus(at time.Time, kind FailureKind, msg string) Status {
	if msg == "" {
		msg = "health check failed"
	}
	return Status{Healthy: false, CheckedAt: at, Error: msg, Kind: kind}
}
