package bolt_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graph-inspector/internal/bolt"
	"github.com/graph-inspector/internal/bolt/boltfake"
)

func newPool(t *testing.T, d *boltfake.Driver, maxSize int) *bolt.SessionPool {
	t.Helper()
	m := bolt.NewPoolManager(maxSize)
	p, err := m.PoolFor(context.Background(), mustAddr(t, "bolt://node-a:7687"), d)
	require.NoError(t, err)
	return p
}

func TestPoolManagerWarmsOneSessionAndMemoizes(t *testing.T) {
	ctx := context.Background()
	d := boltfake.NewDriver(boltfake.NewScript())
	m := bolt.NewPoolManager(4)
	addr := mustAddr(t, "bolt://node-a:7687")

	p1, err := m.PoolFor(ctx, addr, d)
	require.NoError(t, err)
	// min=1：创建时即预热一个会话
	assert.Equal(t, 1, d.SessionsOpened())

	p2, err := m.PoolFor(ctx, addr, d)
	require.NoError(t, err)
	assert.Same(t, p1, p2)
	assert.Equal(t, 1, d.SessionsOpened())
}

func TestPoolManagerConcurrentFirstAccessCreatesSinglePool(t *testing.T) {
	ctx := context.Background()
	d := boltfake.NewDriver(boltfake.NewScript())
	m := bolt.NewPoolManager(4)
	addr := mustAddr(t, "bolt://node-a:7687")

	const n = 16
	pools := make([]*bolt.SessionPool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := m.PoolFor(ctx, addr, d)
			assert.NoError(t, err)
			pools[i] = p
		}(i)
	}
	wg.Wait()

	// 同地址只允许一个池存活，预热也只发生一次
	assert.Equal(t, 1, d.SessionsOpened())
	for i := 1; i < n; i++ {
		assert.Same(t, pools[0], pools[i])
	}
}

func TestPoolReusesValidatedSession(t *testing.T) {
	ctx := context.Background()
	script := boltfake.NewScript()
	d := boltfake.NewDriver(script)
	p := newPool(t, d, 4)

	l1, err := p.Acquire(ctx)
	require.NoError(t, err)
	s1 := l1.Session()
	l1.Release(ctx)

	l2, err := p.Acquire(ctx)
	require.NoError(t, err)
	defer l2.Release(ctx)

	assert.Same(t, s1, l2.Session())
	assert.Equal(t, 1, d.SessionsOpened())
	// 每次复用前都跑过校验查询
	assert.Contains(t, script.RunLog(), "RETURN true as value")
}

func TestPoolDiscardsBrokenIdleSession(t *testing.T) {
	ctx := context.Background()
	script := boltfake.NewScript().
		On("RETURN true as value", nil, errors.New("defunct connection"))
	d := boltfake.NewDriver(script)
	p := newPool(t, d, 4)

	l, err := p.Acquire(ctx)
	require.NoError(t, err)
	defer l.Release(ctx)

	// 预热会话校验失败：被关闭丢弃，换发新会话
	assert.Equal(t, 2, d.SessionsOpened())
	assert.True(t, d.SessionAt(0).Closed.Load())
	assert.Same(t, d.SessionAt(1), l.Session())
}

func TestLeaseDiscardClosesSession(t *testing.T) {
	ctx := context.Background()
	d := boltfake.NewDriver(boltfake.NewScript())
	p := newPool(t, d, 4)

	l, err := p.Acquire(ctx)
	require.NoError(t, err)
	s := l.Session().(*boltfake.Session)
	l.Discard(ctx)
	assert.True(t, s.Closed.Load())

	// 丢弃不回池：下次租用开新会话
	l2, err := p.Acquire(ctx)
	require.NoError(t, err)
	defer l2.Release(ctx)
	assert.Equal(t, 2, d.SessionsOpened())
}

func TestLeaseReleaseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	d := boltfake.NewDriver(boltfake.NewScript())
	p := newPool(t, d, 2)

	l, err := p.Acquire(ctx)
	require.NoError(t, err)
	l.Release(ctx)
	l.Release(ctx) // 重复归还不抖动信号量

	// 池容量未被破坏：仍可同时租满maxSize
	l1, err := p.Acquire(ctx)
	require.NoError(t, err)
	l2, err := p.Acquire(ctx)
	require.NoError(t, err)
	l1.Release(ctx)
	l2.Release(ctx)
}

func TestPoolBlocksAtMaxLeases(t *testing.T) {
	ctx := context.Background()
	d := boltfake.NewDriver(boltfake.NewScript())
	p := newPool(t, d, 2)

	l1, err := p.Acquire(ctx)
	require.NoError(t, err)
	l2, err := p.Acquire(ctx)
	require.NoError(t, err)

	// 池满：第三个租约阻塞直到ctx超时
	tctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = p.Acquire(tctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// 归还后立即可租
	l1.Release(ctx)
	l3, err := p.Acquire(ctx)
	require.NoError(t, err)
	l3.Release(ctx)
	l2.Release(ctx)
}

func TestPoolNeverExceedsMaxUnderContention(t *testing.T) {
	ctx := context.Background()
	const maxSize = 3
	d := boltfake.NewDriver(boltfake.NewScript())
	p := newPool(t, d, maxSize)

	var current, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l, err := p.Acquire(ctx)
			if !assert.NoError(t, err) {
				return
			}
			n := current.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			current.Add(-1)
			l.Release(ctx)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(maxSize))
	assert.Positive(t, peak.Load())
}
