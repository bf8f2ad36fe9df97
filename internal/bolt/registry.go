package bolt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/graph-inspector/pkg/logger"
)

// Registry 连接注册表：每地址在进程生命周期内至多创建一个driver。
// 并发首次访问用singleflight按地址合并，保证不会瞬时创建出两个driver。
//
// 已记录的怪癖（沿用原有行为，不要"顺手修掉"）：同一地址后续携带不同凭据的
// 调用会被忽略，首个调用者的凭据生效。
type Registry struct {
	mu      sync.RWMutex
	drivers map[string]Driver
	closed  bool

	sf             singleflight.Group
	factory        DriverFactory
	connectTimeout time.Duration

	driversOpen prometheus.Gauge // 可选
}

// NewRegistry 创建连接注册表
// connectTimeout 约束driver建连耗时（默认配置10s）；除进程级CloseAll外无其它清理
func NewRegistry(factory DriverFactory, connectTimeout time.Duration) *Registry {
	return &Registry{
		drivers:        make(map[string]Driver),
		factory:        factory,
		connectTimeout: connectTimeout,
	}
}

// WithDriversOpenGauge 注入「已建立driver数」指标
func (r *Registry) WithDriversOpenGauge(g prometheus.Gauge) *Registry {
	r.driversOpen = g
	return r
}

// DriverFor 返回该地址的driver；不存在则创建并记忆
func (r *Registry) DriverFor(addr Address, creds Credentials) (Driver, error) {
	key := addr.String()

	r.mu.RLock()
	if d, ok := r.drivers[key]; ok {
		r.mu.RUnlock()
		return d, nil
	}
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return nil, fmt.Errorf("connection registry is closed")
	}

	v, err, _ := r.sf.Do(key, func() (any, error) {
		// singleflight胜出者内部再查一次，失败重试场景下避免重复建连
		r.mu.RLock()
		d, ok := r.drivers[key]
		r.mu.RUnlock()
		if ok {
			return d, nil
		}

		d, err := r.factory(addr, creds, r.connectTimeout)
		if err != nil {
			return nil, fmt.Errorf("create driver for %s: %w", key, err)
		}

		r.mu.Lock()
		r.drivers[key] = d
		r.mu.Unlock()
		if r.driversOpen != nil {
			r.driversOpen.Inc()
		}
		logger.Debug("driver created", "registry", zap.String("address", key))
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Driver), nil
}

// Encryption 每地址driver元数据快照（当前仅加密开关），供进程诊断使用
func (r *Registry) Encryption() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]bool, len(r.drivers))
	for key, d := range r.drivers {
		out[key] = d.Encrypted()
	}
	return out
}

// CloseAll 进程级关停：关闭全部driver。幂等，重复调用返回nil
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	drivers := r.drivers
	r.drivers = make(map[string]Driver)
	r.mu.Unlock()

	var lastErr error
	for key, d := range drivers {
		if err := d.Close(ctx); err != nil {
			logger.Error("failed to close driver", "registry", zap.String("address", key), zap.Error(err))
			lastErr = err
		}
		if r.driversOpen != nil {
			r.driversOpen.Dec()
		}
	}
	return lastErr
}
