package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/mcp-status/internal/config"
	pgstorage "github.com/taoyao-code/mcp-status/internal/storage/pg"
)

// ConnectDB 按需建立数据库连接池；未启用时返回 nil, nil
func ConnectDB(ctx context.Context, cfg cfgpkg.DatabaseConfig, log *zap.Logger) (*pgxpool.Pool, error) {
	if !cfg.Enable {
		log.Info("database is disabled, skipping initialization")
		return nil, nil
	}
	dbpool, err := pgstorage.NewPool(ctx, cfg, log)
	if err != nil {
		log.Error("db connect error", zap.Error(err))
		return nil, err
	}
	return dbpool, nil
}
