// Package collector 实现各诊断采集器与一次诊断run的编排：
// 成员采集器（按集群成员跑固定查询组）、进程采集器、宿主环境采集器，
// 以及把所有子树合并为最终报告的聚合器。
package collector

import (
	"context"

	"github.com/graph-inspector/internal/report"
)

// Collector 诊断采集器核心接口（所有采集器必须实现）
type Collector interface {
	Name() string                                      // 采集器名称（唯一标识）
	Collect(ctx context.Context) (report.Tree, error) // 产出该类别的诊断子树
}
