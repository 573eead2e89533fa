package xguard

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/sessionkit/pkg/pool/xpool"
)

type stubHandle struct {
	closed atomic.Int32
}

func (h *stubHandle) Close() error {
	h.closed.Add(1)
	return nil
}

func stubFactory(_ context.Context, _ string) (xpool.Handle, error) {
	return &stubHandle{}, nil
}

func newGuardedPool(t *testing.T, opts ...Option) (xpool.Pool, Manager) {
	t.Helper()
	inner, err := xpool.New()
	require.NoError(t, err)
	mgr, err := New(DefaultPoolRules(), opts...)
	require.NoError(t, err)
	guarded := WrapPool(inner, mgr)
	t.Cleanup(func() {
		_ = guarded.Close()
		_ = mgr.Close()
	})
	return guarded, mgr
}

func TestWrapPool_Delegation(t *testing.T) {
	p, mgr := newGuardedPool(t)
	ctx := context.Background()

	h, err := p.GetOrCreate(ctx, "chrome", stubFactory)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, 1, p.Count())

	got, ok := p.Get("chrome")
	assert.True(t, ok)
	assert.Same(t, h, got)

	require.NoError(t, p.Remove(ctx, "chrome"))
	assert.Equal(t, 0, p.Count())
	assert.Equal(t, int32(1), h.(*stubHandle).closed.Load())

	// 每个操作都应在返回前释放锁
	assert.Equal(t, 0, mgr.ActiveLocks())
	assert.Empty(t, mgr.Keys())
}

func TestWrapPool_GetOrCreateTimeoutPropagates(t *testing.T) {
	p, mgr := newGuardedPool(t, WithLockTimeout(50*time.Millisecond))
	ctx := context.Background()

	// 直接经 Manager 占住 chrome 的 RESOURCE 锁，模拟长时间持有者
	grant, err := mgr.Acquire(ctx, OpGetOrCreate, "chrome")
	require.NoError(t, err)

	_, err = p.GetOrCreate(ctx, "chrome", stubFactory)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLockTimeout)
	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "chrome", te.Key)

	require.NoError(t, grant.Release())

	// 释放后同一 key 立即可用
	_, err = p.GetOrCreate(ctx, "chrome", stubFactory)
	assert.NoError(t, err)
}

func TestWrapPool_IndependentKeysConcurrent(t *testing.T) {
	p, _ := newGuardedPool(t, WithLockTimeout(time.Second))
	ctx := context.Background()

	slowFactory := func(_ context.Context, _ string) (xpool.Handle, error) {
		time.Sleep(50 * time.Millisecond)
		return &stubHandle{}, nil
	}

	start := time.Now()
	done := make(chan error, 2)
	for _, key := range []string{"chrome", "firefox"} {
		go func(k string) {
			_, err := p.GetOrCreate(ctx, k, slowFactory)
			done <- err
		}(key)
	}
	require.NoError(t, <-done)
	require.NoError(t, <-done)

	// 异 key 构建并行：总耗时远小于串行的 100ms
	assert.Less(t, time.Since(start), 95*time.Millisecond)
}

func TestWrapPool_RemoveAllGlobal(t *testing.T) {
	p, mgr := newGuardedPool(t, WithLockTimeout(50*time.Millisecond))
	ctx := context.Background()

	_, err := p.GetOrCreate(ctx, "a", stubFactory)
	require.NoError(t, err)
	_, err = p.GetOrCreate(ctx, "b", stubFactory)
	require.NoError(t, err)

	closed, total := p.RemoveAll(ctx)
	assert.Equal(t, 2, closed)
	assert.Equal(t, 2, total)
	assert.Equal(t, 0, p.Count())

	// GLOBAL 持有者在场时 RemoveAll 静默不执行
	_, err = p.GetOrCreate(ctx, "c", stubFactory)
	require.NoError(t, err)
	grant, err := mgr.Acquire(ctx, OpRemoveAll)
	require.NoError(t, err)
	closed, total = p.RemoveAll(ctx)
	assert.Equal(t, 0, closed)
	assert.Equal(t, 0, total)
	assert.Equal(t, 1, p.Count(), "entries must survive a skipped RemoveAll")
	require.NoError(t, grant.Release())
}

func TestWrapPool_GetAfterManagerClosed(t *testing.T) {
	inner, err := xpool.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = inner.Close() })
	mgr, err := New(DefaultPoolRules())
	require.NoError(t, err)
	p := WrapPool(inner, mgr)

	_, err = p.GetOrCreate(context.Background(), "chrome", stubFactory)
	require.NoError(t, err)
	require.NoError(t, mgr.Close())

	// Manager 关闭后 Get 按未命中处理，Close 返回 ErrClosed
	_, ok := p.Get("chrome")
	assert.False(t, ok)
	assert.ErrorIs(t, p.Close(), ErrClosed)
}

func TestWrapPool_InnerErrorStillReleasesLock(t *testing.T) {
	p, mgr := newGuardedPool(t, WithLockTimeout(time.Second))
	ctx := context.Background()

	failFactory := func(_ context.Context, _ string) (xpool.Handle, error) {
		return nil, assert.AnError
	}
	_, err := p.GetOrCreate(ctx, "chrome", failFactory)
	require.Error(t, err)
	assert.ErrorIs(t, err, xpool.ErrConstruction)

	// 内层出错也必须释放锁，同 key 的后续操作不被卡死
	assert.Equal(t, 0, mgr.ActiveLocks())
	_, err = p.GetOrCreate(ctx, "chrome", stubFactory)
	assert.NoError(t, err)
}
