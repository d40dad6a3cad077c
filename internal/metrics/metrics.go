package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// PollerMetrics 健康轮询指标
type PollerMetrics struct {
	PollTotal      *prometheus.CounterVec // labels: result=healthy|unhealthy
	SkippedTotal   prometheus.Counter     // 上一次轮询未完成而跳过的 tick
	PollDuration   prometheus.Histogram
	EndpointUp     prometheus.Gauge
	LastCheckEpoch prometheus.Gauge
}

// NewPollerMetrics 注册并返回轮询指标
func NewPollerMetrics(reg prometheus.Registerer) *PollerMetrics {
	m := &PollerMetrics{
		PollTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mcpstatus_poll_total",
			Help: "Completed health polls by result.",
		}, []string{"result"}),
		SkippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mcpstatus_poll_skipped_total",
			Help: "Ticks skipped because the previous poll was still outstanding.",
		}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mcpstatus_poll_duration_seconds",
			Help:    "Health poll round-trip duration.",
			Buckets: prometheus.DefBuckets,
		}),
		EndpointUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mcpstatus_endpoint_up",
			Help: "1 if the last completed poll was healthy, 0 otherwise.",
		}),
		LastCheckEpoch: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mcpstatus_last_check_timestamp_seconds",
			Help: "Unix time of the last completed poll.",
		}),
	}
	reg.MustRegister(m.PollTotal, m.SkippedTotal, m.PollDuration, m.EndpointUp, m.LastCheckEpoch)
	return m
}

// ObservePoll 记录一次完成的轮询；m 为 nil 时忽略
func (m *PollerMetrics) ObservePoll(healthy bool, took time.Duration, at time.Time) {
	if m == nil {
		return
	}
	result := "unhealthy"
	up := 0.0
	if healthy {
		result = "healthy"
		up = 1
	}
	m.PollTotal.WithLabelValues(result).Inc()
	m.PollDuration.Observe(took.Seconds())
	m.EndpointUp.Set(up)
	m.LastCheckEpoch.Set(float64(at.Unix()))
}

// ObserveSkip 记录一次被跳过的 tick
func (m *PollerMetrics) ObserveSkip() {
	if m == nil {
		return
	}
	m.SkippedTotal.Inc()
}

// NotifyMetrics 状态变更通知指标
type NotifyMetrics struct {
	NotifyTotal *prometheus.CounterVec // labels: event, result=success|failed|dropped|duplicate
}

// NewNotifyMetrics 注册并返回通知指标
func NewNotifyMetrics(reg prometheus.Registerer) *NotifyMetrics {
	return &NotifyMetrics{
		NotifyTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "mcpstatus_notify_total",
			Help: "Health transition webhook deliveries by event and result.",
		}, []string{"event", "result"}),
	}
}

// ObserveNotify 记录一次通知结果；m 为 nil 时忽略
func (m *NotifyMetrics) ObserveNotify(event, result string) {
	if m == nil {
		return
	}
	m.NotifyTotal.WithLabelValues(event, result).Inc()
}
