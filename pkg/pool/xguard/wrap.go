package xguard

import (
	"context"

	"github.com/omeyang/sessionkit/pkg/pool/xpool"
)

// guardedPool 是按声明表加锁的 Pool 装饰器。
// 每个方法先经 Manager 获取声明的锁，defer 保证所有退出路径
// （含 panic）都释放，再委托给内层 Pool。
type guardedPool struct {
	inner xpool.Pool
	mgr   Manager
}

// WrapPool 用 mgr 包装 inner，返回加锁的 Pool。
// 操作规则来自 mgr 构造时的声明表，池操作名见 [DefaultPoolRules]。
// 返回的 Pool 与 inner 共享状态：绕过包装层直接调用 inner
// 会脱离锁策略，调用方不应混用两者。
func WrapPool(inner xpool.Pool, mgr Manager) xpool.Pool {
	return &guardedPool{inner: inner, mgr: mgr}
}

func (g *guardedPool) GetOrCreate(ctx context.Context, key string, factory xpool.Factory) (xpool.Handle, error) {
	grant, err := g.mgr.Acquire(ctx, OpGetOrCreate, key)
	if err != nil {
		return nil, err
	}
	defer grant.Release() //nolint:errcheck // 重复释放不可能：Grant 私有且只 defer 一次
	return g.inner.GetOrCreate(ctx, key, factory)
}

func (g *guardedPool) Get(key string) (xpool.Handle, bool) {
	// NONE 作用域即时返回；仅 Manager 已关闭时视为未命中。
	grant, err := g.mgr.Acquire(context.Background(), OpGet, key)
	if err != nil {
		return nil, false
	}
	defer grant.Release() //nolint:errcheck
	return g.inner.Get(key)
}

func (g *guardedPool) Remove(ctx context.Context, key string) error {
	grant, err := g.mgr.Acquire(ctx, OpRemove, key)
	if err != nil {
		return err
	}
	defer grant.Release() //nolint:errcheck
	return g.inner.Remove(ctx, key)
}

func (g *guardedPool) RemoveAll(ctx context.Context) (closed, total int) {
	grant, err := g.mgr.Acquire(ctx, OpRemoveAll)
	if err != nil {
		// 批量移除的锁获取失败只能静默：签名不携带 error。
		// 调用方可通过返回值 (0, 0) 与 Count() 观测到未执行。
		return 0, 0
	}
	defer grant.Release() //nolint:errcheck
	return g.inner.RemoveAll(ctx)
}

func (g *guardedPool) Count() int {
	grant, err := g.mgr.Acquire(context.Background(), OpCount)
	if err != nil {
		return 0
	}
	defer grant.Release() //nolint:errcheck
	return g.inner.Count()
}

func (g *guardedPool) Close() error {
	grant, err := g.mgr.Acquire(context.Background(), OpClose)
	if err != nil {
		return err
	}
	defer grant.Release() //nolint:errcheck
	return g.inner.Close()
}

var _ xpool.Pool = (*guardedPool)(nil)
