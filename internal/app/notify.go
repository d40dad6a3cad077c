package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/mcp-status/internal/config"
	"github.com/taoyao-code/mcp-status/internal/metrics"
	"github.com/taoyao-code/mcp-status/internal/notify"
	redisstorage "github.com/taoyao-code/mcp-status/internal/storage/redis"
)

// NewNotifierIfEnabled 按配置创建状态变更通知器；未启用时返回 nil
// redisClient 非 nil 时启用跨实例去重
func NewNotifierIfEnabled(cfg cfgpkg.NotifyConfig, endpoint string, redisClient *redisstorage.Client, reg prometheus.Registerer, log *zap.Logger) *notify.Notifier {
	if !cfg.Enable || cfg.WebhookURL == "" {
		return nil
	}
	pusher := notify.NewPusher(&http.Client{Timeout: cfg.Timeout}, cfg.APIKey, cfg.Secret)
	pusher.Retries = cfg.Retries
	log.Info("health transition webhook enabled", zap.String("url", cfg.WebhookURL))
	n := notify.New(pusher, cfg.WebhookURL, endpoint, metrics.NewNotifyMetrics(reg), log.Named("notify"))
	if redisClient != nil {
		n.WithDeduper(notify.NewDeduper(redisClient.Client, cfg.DedupWindow))
	}
	return n
}
