package bolt

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	neo4jconfig "github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
)

// Session 单轮查询序列句柄（非并发安全，同一时刻至多一个事务）
type Session interface {
	Run(ctx context.Context, cypher string, params map[string]any) ([]Record, error)
	Close(ctx context.Context) error
}

// Driver 绑定单一地址与凭据的长连接对象，由注册表独占持有
type Driver interface {
	Session(ctx context.Context) (Session, error)
	Encrypted() bool
	Close(ctx context.Context) error
}

// DriverFactory 创建driver（生产环境为neo4j实现，单测可替换fake）
type DriverFactory func(addr Address, creds Credentials, connectTimeout time.Duration) (Driver, error)

// NewNeo4jDriver neo4j官方driver实现的工厂
func NewNeo4jDriver(addr Address, creds Credentials, connectTimeout time.Duration) (Driver, error) {
	d, err := neo4j.NewDriverWithContext(
		addr.String(),
		neo4j.BasicAuth(creds.Username, creds.Password, ""),
		func(c *neo4jconfig.Config) {
			c.SocketConnectTimeout = connectTimeout
		},
	)
	if err != nil {
		return nil, err
	}
	return &neo4jDriver{inner: d}, nil
}

type neo4jDriver struct {
	inner neo4j.DriverWithContext
}

func (d *neo4jDriver) Session(ctx context.Context) (Session, error) {
	return &neo4jSession{inner: d.inner.NewSession(ctx, neo4j.SessionConfig{})}, nil
}

func (d *neo4jDriver) Encrypted() bool {
	return d.inner.IsEncrypted()
}

func (d *neo4jDriver) Close(ctx context.Context) error {
	return d.inner.Close(ctx)
}

type neo4jSession struct {
	inner neo4j.SessionWithContext
}

// Run 执行查询并吃掉整个结果流，每行按统一数值规则转换为Record
func (s *neo4jSession) Run(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	res, err := s.inner.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	var rows []Record
	for res.Next(ctx) {
		rec := res.Record()
		row := make(Record, len(rec.Keys))
		for i, key := range rec.Keys {
			row[key] = ConvertValue(rec.Values[i])
		}
		rows = append(rows, row)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *neo4jSession) Close(ctx context.Context) error {
	return s.inner.Close(ctx)
}
