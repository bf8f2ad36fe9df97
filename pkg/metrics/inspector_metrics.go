package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewDiagnosticRunDurationSeconds 创建「诊断全量采集耗时分布」指标
// 指标类型：Histogram - 记录一次完整诊断run（拓扑发现+全部成员采集+合并）的耗时
func (m *MetricFactory) NewDiagnosticRunDurationSeconds() prometheus.Histogram {
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "inspector_diagnostic_run_duration_seconds",
		Help:    "Duration of one full diagnostic run",
		Buckets: prometheus.DefBuckets,
	})
	m.reg.MustRegister(h)
	return h
}

// NewMemberCollectErrorsTotal 创建「成员采集硬失败总数」指标
// 标签说明：
// member: 集群成员id，用于区分失败来自哪个成员
func (m *MetricFactory) NewMemberCollectErrorsTotal() *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inspector_member_collect_errors_total",
		Help: "Total hard member collection failures",
	}, []string{"member"})
	m.reg.MustRegister(c)
	return c
}

// NewProbeFailuresTotal 创建「尽力而为探测失败总数」指标
// 标签说明：
// probe: 探测项键名（apoc/algo/nodeCount/labels等）
func (m *MetricFactory) NewProbeFailuresTotal() *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inspector_probe_failures_total",
		Help: "Total best-effort probe failures",
	}, []string{"probe"})
	m.reg.MustRegister(c)
	return c
}

// NewSessionsInUse 创建「会话池在用会话数」指标
// 标签说明：
// address: 会话池所属的bolt地址
func (m *MetricFactory) NewSessionsInUse() *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "inspector_pool_sessions_in_use",
		Help: "Leased sessions per address pool",
	}, []string{"address"})
	m.reg.MustRegister(g)
	return g
}

// NewDriversOpen 创建「已建立driver数」指标
func (m *MetricFactory) NewDriversOpen() prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "inspector_drivers_open",
		Help: "Drivers currently open in the connection registry",
	})
	m.reg.MustRegister(g)
	return g
}
