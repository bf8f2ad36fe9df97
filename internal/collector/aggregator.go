package collector

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/graph-inspector/internal/bolt"
	"github.com/graph-inspector/internal/report"
	"github.com/graph-inspector/internal/topology"
	"github.com/graph-inspector/pkg/config"
	"github.com/graph-inspector/pkg/logger"
)

// AggregatorMetrics 聚合器可选指标集
type AggregatorMetrics struct {
	RunDuration   prometheus.Histogram
	MemberErrors  *prometheus.CounterVec
	ProbeFailures *prometheus.CounterVec
}

// Aggregator 一次诊断run的编排器：
// 先跑一次拓扑发现（致命错误中止整个run），再并发启动每成员采集器 +
// 进程采集器 + 宿主环境采集器，全部结束后深合并为一份报告。
// 单个成员采集失败不取消其余采集；失败以错误值写入该成员条目。
type Aggregator struct {
	conn    *bolt.Connector
	disco   *topology.Discoverer
	db      *config.DatabaseConfig
	version string

	metrics AggregatorMetrics
}

// NewAggregator 创建聚合器
func NewAggregator(conn *bolt.Connector, disco *topology.Discoverer, db *config.DatabaseConfig, version string) *Aggregator {
	return &Aggregator{conn: conn, disco: disco, db: db, version: version}
}

// WithMetrics 注入指标集
func (a *Aggregator) WithMetrics(m AggregatorMetrics) *Aggregator {
	a.metrics = m
	return a
}

// Run 执行一次完整的诊断run，产出合并且脱敏后的最终报告。
// 报告每类别恰有一个条目，即使该类别采集失败（失败表示为值而非缺键）。
func (a *Aggregator) Run(ctx context.Context) (report.Tree, error) {
	start := time.Now()
	defer func() {
		if a.metrics.RunDuration != nil {
			a.metrics.RunDuration.Observe(time.Since(start).Seconds())
		}
	}()

	topo, err := a.disco.Discover(ctx)
	if err != nil {
		// 致命：拓扑不可知则整个run无意义
		return nil, err
	}

	nodes := make([]any, len(topo.Members))
	var processTree, envTree report.Tree

	// 并发扇出；采集失败一律转为值，goroutine不返回错误，互不取消
	var g errgroup.Group
	for i, m := range topo.Members {
		g.Go(func() error {
			mc := NewMemberCollector(a.conn, m, a.metrics.ProbeFailures)
			tree, cerr := mc.Collect(ctx)
			if cerr != nil {
				// 成员级硬失败：该成员子树成为错误值，其余成员不受影响
				logger.Warn("member collection failed", mc.Name(), zap.Error(cerr))
				if a.metrics.MemberErrors != nil {
					a.metrics.MemberErrors.WithLabelValues(m.ID).Inc()
				}
				tree = report.Tree{
					"basics": mc.Basics(),
					"error":  cerr.Error(),
				}
			}
			nodes[i] = tree
			return nil
		})
	}
	g.Go(func() error {
		pc := NewProcessCollector(a.conn.Registry, a.db, a.version)
		processTree, _ = pc.Collect(ctx)
		return nil
	})
	g.Go(func() error {
		ec := &EnvCollector{}
		envTree, _ = ec.Collect(ctx)
		return nil
	})
	_ = g.Wait()

	// 进程与宿主环境子树携带凭据，合并前脱敏；成员子树无凭据不单独脱敏
	merged := report.Merge(
		report.Tree{
			"nodes":     nodes,
			"clustered": topo.Clustered(),
		},
		report.Tree{"process": report.Redact(processTree)},
		report.Tree{"env": report.Redact(envTree)},
	)

	logger.Info("diagnostic run completed", "aggregator",
		zap.Int("members", len(topo.Members)),
		zap.Duration("elapsed", time.Since(start)))
	return merged, nil
}
