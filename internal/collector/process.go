package collector

import (
	"context"
	"time"

	"github.com/graph-inspector/internal/bolt"
	"github.com/graph-inspector/internal/report"
	"github.com/graph-inspector/pkg/config"
)

// ProcessCollector 采集监控进程自身的诊断信息，不访问数据库：
// 每地址driver元数据、采集时间戳、自身身份/版本、活动连接描述符。
// 连接描述符含凭据，由聚合器在合并前统一脱敏。
type ProcessCollector struct {
	registry *bolt.Registry
	db       *config.DatabaseConfig
	version  string
}

// NewProcessCollector 创建进程采集器
func NewProcessCollector(registry *bolt.Registry, db *config.DatabaseConfig, version string) *ProcessCollector {
	return &ProcessCollector{registry: registry, db: db, version: version}
}

func (c *ProcessCollector) Name() string {
	return "process"
}

func (c *ProcessCollector) Collect(ctx context.Context) (report.Tree, error) {
	drivers := report.Tree{}
	for addr, encrypted := range c.registry.Encryption() {
		drivers[addr] = report.Tree{"encrypted": encrypted}
	}

	// 宿主提供的活动连接描述符（host/port/username/password + 逻辑标识）
	connection := report.Tree{
		"host":     c.db.Host,
		"port":     int64(c.db.Port),
		"username": c.db.Username,
		"password": c.db.Password,
		"project":  c.db.Project,
		"graph":    c.db.Graph,
	}

	return report.Tree{
		"name":         "graph-inspector",
		"version":      c.version,
		"collected_at": time.Now().UTC().Format(time.RFC3339),
		"drivers":      drivers,
		"connection":   connection,
	}, nil
}
