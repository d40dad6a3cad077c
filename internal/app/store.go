package app

import (
	"fmt"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/mcp-status/internal/config"
	"github.com/taoyao-code/mcp-status/internal/statusstore"
	redisstorage "github.com/taoyao-code/mcp-status/internal/storage/redis"
)

// NewStatusStore 按 status.backend 创建快照存储
func NewStatusStore(cfg cfgpkg.StatusConfig, redisClient *redisstorage.Client, log *zap.Logger) (statusstore.Store, error) {
	switch cfg.Backend {
	case "", cfgpkg.BackendMemory:
		log.Info("status store initialized", zap.String("backend", cfgpkg.BackendMemory))
		return statusstore.NewMemoryStore(), nil
	case cfgpkg.BackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("status store: backend %q requires an enabled redis client", cfg.Backend)
		}
		log.Info("status store initialized",
			zap.String("backend", cfgpkg.BackendRedis),
			zap.String("key", cfg.Key),
			zap.Duration("ttl", cfg.TTL))
		return statusstore.NewRedisStore(redisClient.Client, cfg.Key, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("status store: unknown backend %q", cfg.Backend)
	}
}
