package topology

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/graph-inspector/internal/bolt"
	"github.com/graph-inspector/pkg/logger"
)

const (
	overviewQuery = "CALL dbms.cluster.overview()"
	pingQuery     = "RETURN true as value"
)

// Topology 某一时刻已知的成员集合
type Topology struct {
	Members []Member
}

// Clustered 仅当发现的成员数大于1才视为真实多成员集群；
// fallback路径与单行overview结果都按「非集群」对待，但拓扑本身仍然有效
func (t *Topology) Clustered() bool {
	return len(t.Members) > 1
}

// Discoverer 拓扑发现器：两态状态机（overview尝试 → 发现完成/单机fallback）
type Discoverer struct {
	conn *bolt.Connector
	base bolt.Address
}

// NewDiscoverer 创建拓扑发现器；base为宿主提供的活动连接地址
func NewDiscoverer(conn *bolt.Connector, base bolt.Address) *Discoverer {
	return &Discoverer{conn: conn, base: base}
}

// Discover 确定集群成员关系：
//   - overview成功 → 每行映射为一个成员
//   - 「过程不存在」类失败 → 合成一个SINGLE成员并ping预热其driver/会话池
//   - 其它失败 → 致命，整个诊断run中止
func (d *Discoverer) Discover(ctx context.Context) (*Topology, error) {
	lease, err := d.conn.Lease(ctx, d.base)
	if err != nil {
		return nil, fmt.Errorf("topology discovery: %w", err)
	}

	rows, err := lease.Session().Run(ctx, overviewQuery, nil)
	if err != nil {
		lease.Discard(ctx)
		if !isProcedureMissing(err) {
			return nil, fmt.Errorf("cluster overview failed: %w", err)
		}

		// Fallback：环境没有集群能力，合成单机拓扑
		m, serr := standalone{addr: d.base}.Member()
		if serr != nil {
			return nil, serr
		}
		logger.Info("cluster overview unavailable, treating deployment as standalone",
			"topology", zap.String("address", d.base.String()), zap.String("member_id", m.ID))

		// 机会式预热该成员的driver/会话池；ping失败不阻断
		if !d.Ping(ctx, m) {
			logger.Warn("standalone member did not answer liveness probe", "topology",
				zap.String("address", d.base.String()))
		}
		return &Topology{Members: []Member{m}}, nil
	}
	lease.Release(ctx)

	members := make([]Member, 0, len(rows))
	for _, row := range rows {
		m, err := overviewRow{rec: row}.Member()
		if err != nil {
			return nil, fmt.Errorf("cluster overview: %w", err)
		}
		members = append(members, m)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("cluster overview returned no members")
	}

	logger.Info("topology discovered", "topology",
		zap.Int("members", len(members)), zap.Bool("clustered", len(members) > 1))
	return &Topology{Members: members}, nil
}

// Ping 活性探测：租用成员主地址的会话（副作用：强制创建driver/池），
// 执行常量查询。任何错误一律吸收为false，不向上传播——用于机会式预热连接
func (d *Discoverer) Ping(ctx context.Context, m Member) bool {
	addr, err := m.BoltAddress()
	if err != nil {
		return false
	}
	lease, err := d.conn.Lease(ctx, addr)
	if err != nil {
		return false
	}
	if _, err := lease.Session().Run(ctx, pingQuery, nil); err != nil {
		lease.Discard(ctx)
		return false
	}
	lease.Release(ctx)
	return true
}

// isProcedureMissing 识别「过程不存在」类错误（大小写不敏感）
func isProcedureMissing(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such procedure") ||
		strings.Contains(msg, "there is no procedure with the name") ||
		strings.Contains(msg, "procedurenotfound")
}
