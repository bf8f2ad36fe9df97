package collector

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/graph-inspector/internal/bolt"
	"github.com/graph-inspector/internal/report"
	"github.com/graph-inspector/internal/topology"
	"github.com/graph-inspector/pkg/logger"
)

// 必选查询（任一失败 → 该成员子树整体失败）
const (
	jmxQuery         = "CALL dbms.queryJmx('*:*')"
	usersQuery       = "CALL dbms.security.listUsers()"
	rolesQuery       = "CALL dbms.security.listRoles()"
	configQuery      = "CALL dbms.listConfig()"
	constraintsQuery = "CALL db.constraints()"
	indexesQuery     = "CALL db.indexes()"
)

// bestEffortProbes 尽力而为的单值探测：逐项独立执行，失败以错误值呈现
var bestEffortProbes = []struct {
	key    string
	cypher string
}{
	{"apocVersion", "RETURN apoc.version() as value"},
	{"algoVersion", "RETURN algo.version() as value"},
	{"nodeCount", "MATCH (n) RETURN count(n) as value"},
	{"labels", "call db.labels() yield label return collect(label) as value"},
}

// MemberCollector 按单个集群成员采集诊断子树。
// 全部必选查询串行跑在同一个租用会话上（会话同一时刻至多一个事务）；
// 整轮查询结束后统一归还会话，与各查询成败无关。
type MemberCollector struct {
	conn   *bolt.Connector
	member topology.Member

	probeFailures *prometheus.CounterVec // 可选
}

// NewMemberCollector 创建成员采集器
func NewMemberCollector(conn *bolt.Connector, member topology.Member, probeFailures *prometheus.CounterVec) *MemberCollector {
	return &MemberCollector{conn: conn, member: member, probeFailures: probeFailures}
}

func (c *MemberCollector) Name() string {
	return "member:" + c.member.ID
}

// Basics 不需查询即可同步组装的成员基本信息
func (c *MemberCollector) Basics() report.Tree {
	address := ""
	if addr, err := c.member.BoltAddress(); err == nil {
		address = addr.String()
	}
	return report.Tree{
		"id":        c.member.ID,
		"address":   address,
		"protocols": c.member.Protocols(),
		"role":      string(c.member.Role),
		"database":  c.member.Database,
	}
}

// Collect 采集该成员的诊断子树。
// 必选数据源失败时返回错误（成员级硬失败，由聚合器转为错误值）；
// 尽力而为探测永不使整体失败。
func (c *MemberCollector) Collect(ctx context.Context) (report.Tree, error) {
	addr, err := c.member.BoltAddress()
	if err != nil {
		return nil, err
	}
	lease, err := c.conn.Lease(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("member %s: %w", c.member.ID, err)
	}
	defer lease.Release(ctx)
	session := lease.Session()

	tree := report.Tree{"basics": c.Basics()}

	// ---- 必选数据源 ----
	jmxRows, err := session.Run(ctx, jmxQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("member %s: queryJmx: %w", c.member.ID, err)
	}
	tree["JMX"] = jmxTree(jmxRows)

	users, err := session.Run(ctx, usersQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("member %s: listUsers: %w", c.member.ID, err)
	}
	tree["users"] = rowList(users)

	roles, err := session.Run(ctx, rolesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("member %s: listRoles: %w", c.member.ID, err)
	}
	tree["roles"] = rowList(roles)

	configRows, err := session.Run(ctx, configQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("member %s: listConfig: %w", c.member.ID, err)
	}
	tree["configuration"] = configTree(configRows)

	constraints, err := session.Run(ctx, constraintsQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("member %s: constraints: %w", c.member.ID, err)
	}
	tree["constraints"] = positionedRowList(constraints)

	indexes, err := session.Run(ctx, indexesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("member %s: indexes: %w", c.member.ID, err)
	}
	tree["indexes"] = positionedRowList(indexes)

	// ---- 尽力而为探测：错误即值，键永远存在 ----
	for _, probe := range bestEffortProbes {
		v, perr := singleValue(ctx, session, probe.cypher)
		if perr != nil {
			tree[probe.key] = report.Tree{"error": perr.Error()}
			if c.probeFailures != nil {
				c.probeFailures.WithLabelValues(probe.key).Inc()
			}
			logger.Debug("best-effort probe failed", c.Name(),
				zap.String("probe", probe.key), zap.Error(perr))
			continue
		}
		tree[probe.key] = v
	}

	return tree, nil
}

// singleValue 执行单值查询，取首行的value列
func singleValue(ctx context.Context, s bolt.Session, cypher string) (any, error) {
	rows, err := s.Run(ctx, cypher, nil)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("query %q returned no rows", cypher)
	}
	v, ok := rows[0]["value"]
	if !ok {
		return nil, fmt.Errorf("query %q returned no value column", cypher)
	}
	return v, nil
}

// jmxTree 管理bean记录 → 每条记录一个条目，按bean名称键控
func jmxTree(rows []bolt.Record) report.Tree {
	out := report.Tree{}
	for i, row := range rows {
		key, _ := row["name"].(string)
		if key == "" {
			key = fmt.Sprintf("bean-%d", i)
		}
		entry := report.Tree{}
		if desc, ok := row["description"]; ok {
			entry["description"] = desc
		}
		if attrs, ok := row["attributes"]; ok {
			entry["attributes"] = attrs
		}
		out[key] = entry
	}
	return out
}

// configTree 配置全量dump → name→value映射
func configTree(rows []bolt.Record) report.Tree {
	out := report.Tree{}
	for _, row := range rows {
		name, _ := row["name"].(string)
		if name == "" {
			continue
		}
		out[name] = row["value"]
	}
	return out
}

// rowList 行集合转[]any（保持JSON可序列化与脱敏可遍历）
func rowList(rows []bolt.Record) []any {
	out := make([]any, len(rows))
	for i, row := range rows {
		out[i] = map[string]any(row)
	}
	return out
}

// positionedRowList 行集合转[]any，每行追加position标记以保证稳定排序
func positionedRowList(rows []bolt.Record) []any {
	out := make([]any, len(rows))
	for i, row := range rows {
		tagged := make(map[string]any, len(row)+1)
		for k, v := range row {
			tagged[k] = v
		}
		tagged["position"] = int64(i)
		out[i] = tagged
	}
	return out
}
