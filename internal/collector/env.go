package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/graph-inspector/internal/report"
)

// EnvCollector 宿主环境自省采集器（可选数据源，失败吸收为错误值）
type EnvCollector struct{}

func (c *EnvCollector) Name() string {
	return "env"
}

func (c *EnvCollector) Collect(ctx context.Context) (report.Tree, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return report.Tree{"error": err.Error()}, nil
	}
	return report.Tree{
		"hostname":         info.Hostname,
		"os":               info.OS,
		"platform":         info.Platform,
		"platform_version": info.PlatformVersion,
		"kernel_version":   info.KernelVersion,
		"arch":             info.KernelArch,
		"uptime_seconds":   int64(info.Uptime),
	}, nil
}
