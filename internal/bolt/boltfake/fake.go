// Package boltfake 提供脚本驱动的Driver/Session假实现，供各包单测使用。
package boltfake

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/graph-inspector/internal/bolt"
)

// Response 某条查询的预设结果
type Response struct {
	Rows []bolt.Record
	Err  error
}

// Script 按查询文本预设结果；未登记的查询返回错误
type Script struct {
	mu        sync.Mutex
	responses map[string]Response
	runLog    []string
}

// NewScript 创建脚本；默认登记校验/ping查询为成功
func NewScript() *Script {
	s := &Script{responses: make(map[string]Response)}
	s.On("RETURN true as value", []bolt.Record{{"value": true}}, nil)
	return s
}

// On 登记一条查询的结果
func (s *Script) On(cypher string, rows []bolt.Record, err error) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[cypher] = Response{Rows: rows, Err: err}
	return s
}

// RunLog 已执行查询的顺序记录
func (s *Script) RunLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.runLog))
	copy(out, s.runLog)
	return out
}

func (s *Script) run(cypher string) ([]bolt.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runLog = append(s.runLog, cypher)
	if r, ok := s.responses[cypher]; ok {
		return r.Rows, r.Err
	}
	return nil, fmt.Errorf("boltfake: unexpected query %q", cypher)
}

// Driver 假driver；记录打开过的全部会话与关闭次数
type Driver struct {
	script    *Script
	encrypted bool

	mu       sync.Mutex
	sessions []*Session

	CloseCalls atomic.Int32
}

// NewDriver 创建假driver
func NewDriver(script *Script) *Driver {
	return &Driver{script: script}
}

// WithEncrypted 设置加密标记
func (d *Driver) WithEncrypted(encrypted bool) *Driver {
	d.encrypted = encrypted
	return d
}

func (d *Driver) Session(ctx context.Context) (bolt.Session, error) {
	s := &Session{script: d.script}
	d.mu.Lock()
	d.sessions = append(d.sessions, s)
	d.mu.Unlock()
	return s, nil
}

// SessionsOpened 打开过的会话总数
func (d *Driver) SessionsOpened() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}

// SessionAt 第i个打开的会话
func (d *Driver) SessionAt(i int) *Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sessions[i]
}

func (d *Driver) Encrypted() bool {
	return d.encrypted
}

func (d *Driver) Close(ctx context.Context) error {
	d.CloseCalls.Add(1)
	return nil
}

// Session 假会话
type Session struct {
	script *Script
	Closed atomic.Bool
}

func (s *Session) Run(ctx context.Context, cypher string, params map[string]any) ([]bolt.Record, error) {
	if s.Closed.Load() {
		return nil, fmt.Errorf("boltfake: session is closed")
	}
	return s.script.run(cypher)
}

func (s *Session) Close(ctx context.Context) error {
	s.Closed.Store(true)
	return nil
}

// Factory 每地址取对应脚本的driver工厂；未登记地址使用fallback脚本。
// CreateCalls 记录工厂被真正调用的次数（用于single-flight断言）。
type Factory struct {
	mu       sync.Mutex
	scripts  map[string]*Script
	fallback *Script
	Delay    time.Duration // 模拟建连耗时

	CreateCalls atomic.Int32
	Drivers     map[string]*Driver
}

// NewFactory 创建假工厂
func NewFactory(fallback *Script) *Factory {
	return &Factory{
		scripts:  make(map[string]*Script),
		fallback: fallback,
		Drivers:  make(map[string]*Driver),
	}
}

// ScriptFor 给指定地址绑定独立脚本
func (f *Factory) ScriptFor(addr string, script *Script) *Factory {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[addr] = script
	return f
}

// DriverFactory 适配bolt.DriverFactory
func (f *Factory) DriverFactory(addr bolt.Address, creds bolt.Credentials, connectTimeout time.Duration) (bolt.Driver, error) {
	f.CreateCalls.Add(1)
	if f.Delay > 0 {
		time.Sleep(f.Delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	script, ok := f.scripts[addr.String()]
	if !ok {
		script = f.fallback
	}
	d := NewDriver(script)
	f.Drivers[addr.String()] = d
	return d, nil
}
