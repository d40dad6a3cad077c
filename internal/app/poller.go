package app

import (
	"net/http"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/mcp-status/internal/config"
	"github.com/taoyao-code/mcp-status/internal/healthpoll"
	"github.com/taoyao-code/mcp-status/internal/metrics"
)

// NewPoller 创建健康轮询器，User-Agent 携带实例ID便于上游定位来源
func NewPoller(cfg cfgpkg.PollerConfig, instanceID string, pm *metrics.PollerMetrics, log *zap.Logger) *healthpoll.Poller {
	client := &http.Client{}
	if cfg.Timeout > 0 {
		client.Timeout = cfg.Timeout
	}
	return healthpoll.New(healthpoll.Options{
		Prober:  healthpoll.NewHTTPProber(client, "mcpstatus/"+instanceID),
		Timeout: cfg.Timeout,
		Logger:  log.Named("poller"),
		Metrics: pm,
	})
}

// PollEndpoint 解析轮询目标地址：endpoint 优先，否则 baseUrl + /health
func PollEndpoint(cfg cfgpkg.PollerConfig) (string, error) {
	if cfg.Endpoint != "" {
		if err := healthpoll.ValidateEndpoint(cfg.Endpoint); err != nil {
			return "", err
		}
		return cfg.Endpoint, nil
	}
	return healthpoll.EndpointFromBase(cfg.BaseURL)
}
