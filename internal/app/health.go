package app

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cfgpkg "github.com/taoyao-code/mcp-status/internal/config"
	"github.com/taoyao-code/mcp-status/internal/health"
)

// 就绪组件
const (
	ReadyDB    = "db"
	ReadyRedis = "redis"
	ReadyStore = "store"
)

// NewReady 创建就绪标记
func NewReady() *health.Readiness {
	return health.New(ReadyDB, ReadyRedis, ReadyStore)
}

// NewHealthAggregator 创建健康检查聚合器，dbpool 为 nil 时不含数据库检查
func NewHealthAggregator(dbpool *pgxpool.Pool) *health.Aggregator {
	agg := health.NewAggregator()
	if dbpool != nil {
		agg.AddChecker(health.NewDatabaseChecker(dbpool))
	}
	return agg
}

// AddUpstreamChecker 将轮询器的最新快照作为 upstream 组件上报
func AddUpstreamChecker(aggregator *health.Aggregator, source health.SnapshotSource) {
	if source != nil {
		aggregator.AddChecker(health.NewUpstreamChecker("upstream", source))
	}
}

// RegisterHealthRoutes 注册健康检查HTTP路由
func RegisterHealthRoutes(r *gin.Engine, aggregator *health.Aggregator, cfg cfgpkg.MCPConfig) {
	health.RegisterHTTPRoutes(r, aggregator, health.Info{
		TransportMode: cfg.TransportMode,
		APIURL:        cfg.APIURL,
	})
}
