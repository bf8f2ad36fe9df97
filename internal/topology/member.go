// Package topology 负责确定部署的集群成员关系：
// 有集群能力的环境走overview查询，无能力的环境合成单机拓扑。
package topology

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/graph-inspector/internal/bolt"
)

// Role 成员角色
type Role string

const (
	RoleLeader      Role = "LEADER"
	RoleFollower    Role = "FOLLOWER"
	RoleReadReplica Role = "READ_REPLICA"
	// RoleSingle 合成的单机成员角色；除角色值外与真实单节点集群的成员不可区分
	RoleSingle Role = "SINGLE"
)

// Member 集群成员，构造后不可变
type Member struct {
	ID        string
	Role      Role
	Database  string
	Addresses []string // 按协议的端点集合（bolt/http/https等URI）
}

// BoltAddress 取成员的bolt协议端点
func (m Member) BoltAddress() (bolt.Address, error) {
	for _, raw := range m.Addresses {
		if !strings.HasPrefix(strings.ToLower(raw), "bolt") && !strings.HasPrefix(strings.ToLower(raw), "neo4j") {
			continue
		}
		addr, err := bolt.ParseAddress(raw)
		if err != nil {
			continue
		}
		return addr, nil
	}
	return bolt.Address{}, fmt.Errorf("member %s has no bolt address among %v", m.ID, m.Addresses)
}

// Protocols 成员支持的协议scheme列表
func (m Member) Protocols() []string {
	out := make([]string, 0, len(m.Addresses))
	for _, raw := range m.Addresses {
		if i := strings.Index(raw, "://"); i > 0 {
			out = append(out, strings.ToLower(raw[:i]))
		}
	}
	return out
}

// MemberSource 成员来源的带标签变体：真实overview行 与 合成的单机描述符
// 二者通过统一的Member()访问器产出成员，下游不感知来源差异
type MemberSource interface {
	Member() (Member, error)
}

// overviewRow 来自 dbms.cluster.overview() 的一行，字段逐字取自行内容
type overviewRow struct {
	rec bolt.Record
}

func (r overviewRow) Member() (Member, error) {
	id, _ := r.rec["id"].(string)
	role, _ := r.rec["role"].(string)

	database := "default"
	if d, ok := r.rec["database"].(string); ok && d != "" {
		database = d
	}

	var addrs []string
	switch raw := r.rec["addresses"].(type) {
	case []any:
		for _, a := range raw {
			if s, ok := a.(string); ok {
				addrs = append(addrs, s)
			}
		}
	case []string:
		addrs = raw
	}

	if id == "" {
		return Member{}, fmt.Errorf("cluster overview row has no member id: %v", r.rec)
	}
	if len(addrs) == 0 {
		return Member{}, fmt.Errorf("cluster overview row for %s has no addresses", id)
	}
	return Member{ID: id, Role: Role(role), Database: database, Addresses: addrs}, nil
}

// standalone 集群发现不可用时合成的单机描述符；id为新生成的唯一标识
type standalone struct {
	addr bolt.Address
}

func (s standalone) Member() (Member, error) {
	return Member{
		ID:        uuid.NewString(),
		Role:      RoleSingle,
		Database:  "default",
		Addresses: []string{s.addr.String()},
	}, nil
}
