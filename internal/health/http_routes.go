package health

import (
	"maps"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// Info /health 中声明的服务诊断信息
type Info struct {
	TransportMode string
	APIURL        string
}

// RegisterHTTPRoutes 注册健康检查HTTP路由
func RegisterHTTPRoutes(r gin.IRouter, aggregator *Aggregator, info Info) {
	// GET /health/ready
	r.GET("/health/ready", func(c *gin.Context) {
		if !aggregator.Ready(c.Request.Context()) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"ready":  false,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"ready":  true,
		})
	})

	// GET /health/live
	r.GET("/health/live", func(c *gin.Context) {
		if !aggregator.Alive() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"alive": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"alive": true})
	})

	// GET /health 详细健康检查，同时携带 transport_mode / api_url 供轮询方展示
	r.GET("/health", func(c *gin.Context) {
		report := aggregator.Report(c.Request.Context())

		// Degraded状态仍返回200，表示可以服务
		code := http.StatusOK
		body := gin.H{
			"status":         report.Status,
			"transport_mode": info.TransportMode,
			"api_url":        info.APIURL,
			"timestamp":      report.Timestamp,
			"checks":         report.Checks,
		}
		if report.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
			body["error"] = firstFailure(report.Checks)
		}
		c.JSON(code, body)
	})
}

// firstFailure 取一个不健康组件的描述作为错误原因
func firstFailure(checks map[string]CheckResult) string {
	for _, name := range slices.Sorted(maps.Keys(checks)) {
		res := checks[name]
		if res.Status == StatusUnhealthy {
			if res.Message != "" {
				return name + ": " + res.Message
			}
			return name + " unhealthy"
		}
	}
	return "unhealthy"
}
