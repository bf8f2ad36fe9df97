package bolt

import "context"

// Connector 组合连接注册表与会话池管理器，为固定凭据下的任意地址出租会话。
// 拓扑发现器与各采集器共用一个Connector，driver/池的惰性创建由此统一触发。
type Connector struct {
	Registry *Registry
	Pools    *PoolManager
	Creds    Credentials
}

// NewConnector 创建Connector
func NewConnector(registry *Registry, pools *PoolManager, creds Credentials) *Connector {
	return &Connector{Registry: registry, Pools: pools, Creds: creds}
}

// Lease 租用该地址的会话；沿途按需创建driver与会话池
func (c *Connector) Lease(ctx context.Context, addr Address) (*Lease, error) {
	driver, err := c.Registry.DriverFor(addr, c.Creds)
	if err != nil {
		return nil, err
	}
	pool, err := c.Pools.PoolFor(ctx, addr, driver)
	if err != nil {
		return nil, err
	}
	return pool.Acquire(ctx)
}
