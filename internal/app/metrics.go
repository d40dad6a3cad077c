package app

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/taoyao-code/mcp-status/internal/metrics"
)

// NewMetrics 初始化注册表与轮询指标
func NewMetrics() (*prometheus.Registry, *metrics.PollerMetrics) {
	reg := metrics.NewRegistry()
	pm := metrics.NewPollerMetrics(reg)
	return reg, pm
}
