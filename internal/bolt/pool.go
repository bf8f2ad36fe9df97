package bolt

import (
	"context"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/graph-inspector/pkg/logger"
)

// validationQuery 复用前的会话校验查询（空操作常量查询）
const validationQuery = "RETURN true as value"

// SessionPool 绑定单一driver的有界会话池。
// min=1：创建时立即打开一个会话；max：同一时刻的租约上限。
// 进程关停前不销毁；损坏的会话在复用校验时被丢弃并重建。
type SessionPool struct {
	addr   Address
	driver Driver
	sem    chan struct{} // 租约上限
	idle   chan Session  // 待复用的空闲会话

	inUse *prometheus.GaugeVec // 可选
}

func newSessionPool(ctx context.Context, addr Address, driver Driver, maxSize int, inUse *prometheus.GaugeVec) (*SessionPool, error) {
	if maxSize < 1 {
		return nil, fmt.Errorf("session pool for %s: maxSize must be >= 1, got %d", addr, maxSize)
	}
	p := &SessionPool{
		addr:   addr,
		driver: driver,
		sem:    make(chan struct{}, maxSize),
		idle:   make(chan Session, maxSize),
		inUse:  inUse,
	}
	// 立即预热一个会话
	s, err := driver.Session(ctx)
	if err != nil {
		return nil, fmt.Errorf("session pool for %s: open initial session: %w", addr, err)
	}
	p.idle <- s
	return p, nil
}

// Lease 会话租约：一个租约对应一轮查询，期间会话独占，释放后租约失效
type Lease struct {
	pool    *SessionPool
	session Session
	done    bool
}

// Acquire 租用一个会话；池满时阻塞直到有会话归还或ctx取消。
// 空闲会话复用前先校验，校验失败即销毁并换新。
func (p *SessionPool) Acquire(ctx context.Context) (*Lease, error) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	for {
		select {
		case s := <-p.idle:
			if p.validate(ctx, s) {
				p.gauge(+1)
				return &Lease{pool: p, session: s}, nil
			}
			// 校验失败：丢弃，继续取下一个候选
			_ = s.Close(ctx)
			logger.Debug("discarded broken pooled session", "pool", zap.String("address", p.addr.String()))
		default:
			s, err := p.driver.Session(ctx)
			if err != nil {
				<-p.sem
				return nil, fmt.Errorf("session pool for %s: open session: %w", p.addr, err)
			}
			p.gauge(+1)
			return &Lease{pool: p, session: s}, nil
		}
	}
}

func (p *SessionPool) validate(ctx context.Context, s Session) bool {
	_, err := s.Run(ctx, validationQuery, nil)
	return err == nil
}

func (p *SessionPool) gauge(delta float64) {
	if p.inUse != nil {
		p.inUse.WithLabelValues(p.addr.String()).Add(delta)
	}
}

// Session 租约持有的会话
func (l *Lease) Session() Session {
	return l.session
}

// Release 归还会话入池复用
func (l *Lease) Release(ctx context.Context) {
	if l.done {
		return
	}
	l.done = true
	l.pool.gauge(-1)
	select {
	case l.pool.idle <- l.session:
	default:
		_ = l.session.Close(ctx)
	}
	<-l.pool.sem
}

// Discard 已知损坏时丢弃会话，不回池
func (l *Lease) Discard(ctx context.Context) {
	if l.done {
		return
	}
	l.done = true
	l.pool.gauge(-1)
	_ = l.session.Close(ctx)
	<-l.pool.sem
}

// PoolManager 会话池管理器：按地址记忆会话池，首次访问时创建。
// 并发首次访问同样用singleflight合并，保证同地址只有一个池存活。
type PoolManager struct {
	mu    sync.RWMutex
	pools map[string]*SessionPool
	sf    singleflight.Group

	maxSize int
	inUse   *prometheus.GaugeVec // 可选
}

// DefaultPoolMaxSize 每地址默认会话上限
const DefaultPoolMaxSize = 15

// NewPoolManager 创建会话池管理器
func NewPoolManager(maxSize int) *PoolManager {
	if maxSize <= 0 {
		maxSize = DefaultPoolMaxSize
	}
	return &PoolManager{
		pools:   make(map[string]*SessionPool),
		maxSize: maxSize,
	}
}

// WithSessionsInUseGauge 注入「在用会话数」指标
func (m *PoolManager) WithSessionsInUseGauge(g *prometheus.GaugeVec) *PoolManager {
	m.inUse = g
	return m
}

// PoolFor 返回该地址的会话池；不存在则创建（min=1立即预热）并记忆
func (m *PoolManager) PoolFor(ctx context.Context, addr Address, driver Driver) (*SessionPool, error) {
	key := addr.String()

	m.mu.RLock()
	if p, ok := m.pools[key]; ok {
		m.mu.RUnlock()
		return p, nil
	}
	m.mu.RUnlock()

	v, err, _ := m.sf.Do(key, func() (any, error) {
		m.mu.RLock()
		p, ok := m.pools[key]
		m.mu.RUnlock()
		if ok {
			return p, nil
		}

		p, err := newSessionPool(ctx, addr, driver, m.maxSize, m.inUse)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		m.pools[key] = p
		m.mu.Unlock()
		logger.Debug("session pool created", "pool", zap.String("address", key), zap.Int("max_size", m.maxSize))
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*SessionPool), nil
}
