package app

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// GenerateInstanceID 生成实例ID
// 优先使用配置 app.instanceId，其次环境变量 INSTANCE_ID，否则生成 UUID
func GenerateInstanceID(configured string) string {
	if configured != "" {
		return configured
	}
	if id := os.Getenv("INSTANCE_ID"); id != "" {
		return id
	}

	// 格式：mcpstatus-{hostname}-{uuid前8位}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("mcpstatus-%s-%s", hostname, uuid.NewString()[:8])
}
