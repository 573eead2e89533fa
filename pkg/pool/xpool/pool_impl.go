package xpool

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/omeyang/sessionkit/pkg/observability/xmetrics"
)

// poolImpl 是 Pool 的实现。
type poolImpl struct {
	opts    *options
	mu      sync.RWMutex
	entries map[string]*entry
	group   singleflight.Group
	closed  atomic.Bool
	sweeper *sweeper
}

func newPoolImpl(opts *options) *poolImpl {
	p := &poolImpl{
		opts:    opts,
		entries: make(map[string]*entry),
	}
	if opts.inactivityTimeout > 0 {
		p.sweeper = newSweeper(p, opts.sweepPeriod)
		p.sweeper.start()
	}
	return p
}

// foldKey 按配置折叠 key 的大小写。
func (p *poolImpl) foldKey(key string) string {
	if p.opts.caseInsensitive {
		return strings.ToLower(key)
	}
	return key
}

func (p *poolImpl) GetOrCreate(ctx context.Context, key string, factory Factory) (Handle, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if key == "" {
		return nil, ErrEmptyKey
	}
	if factory == nil {
		return nil, ErrNilFactory
	}
	if p.closed.Load() {
		return nil, ErrClosed
	}
	key = p.foldKey(key)

	// 快路径：命中 Active 条目直接续期返回，不进 singleflight。
	if h, ok := p.lookup(key); ok {
		return h, nil
	}

	// 慢路径：同一 key 的并发未命中合并为一次构建。
	// DoChan 让每个等待者独立响应自己的 ctx 取消，
	// 而构建本身继续完成并入池，供后续调用方复用。
	ch := p.group.DoChan(key, func() (any, error) {
		return p.buildEntry(key, factory)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-ch:
		if result.Err != nil {
			return nil, result.Err
		}
		h, ok := result.Val.(Handle)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected singleflight result type", ErrConstruction)
		}
		return h, nil
	}
}

// buildEntry 在 singleflight 内执行：双检缓存后调用工厂并入池。
func (p *poolImpl) buildEntry(key string, factory Factory) (Handle, error) {
	// 双检：飞行期排队的调用在前一轮构建完成后直接命中。
	if h, ok := p.lookup(key); ok {
		return h, nil
	}
	if p.closed.Load() {
		return nil, ErrClosed
	}

	// 构建 ctx 与任何调用方解耦，只受可选的构建超时约束。
	buildCtx := context.Background()
	if p.opts.buildTimeout > 0 {
		var cancel context.CancelFunc
		buildCtx, cancel = context.WithTimeout(buildCtx, p.opts.buildTimeout)
		defer cancel()
	}

	start := time.Now()
	h, err := factory(buildCtx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConstruction, err)
	}
	if h == nil {
		return nil, fmt.Errorf("%w: factory returned nil handle", ErrConstruction)
	}
	elapsed := time.Since(start)

	e := newEntry(key, h, time.Now())

	p.mu.Lock()
	if p.closed.Load() {
		p.mu.Unlock()
		// 构建期间池被关闭：句柄不入池，就地拆除，避免泄漏。
		if closeErr := h.Close(); closeErr != nil {
			p.logWarn("xpool: teardown of orphaned handle failed",
				slog.String("key", key), slog.Any("error", closeErr))
		}
		return nil, ErrClosed
	}
	p.entries[key] = e
	p.mu.Unlock()

	p.opts.recorder.EntryCreated(buildCtx, elapsed)
	p.logDebug("xpool: entry created",
		slog.String("key", key),
		slog.String("entry_id", e.id),
		slog.Duration("elapsed", elapsed))
	return h, nil
}

// lookup 查找 Active 条目并续期。
func (p *poolImpl) lookup(key string) (Handle, bool) {
	p.mu.RLock()
	e, ok := p.entries[key]
	p.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return e.touch(time.Now())
}

func (p *poolImpl) Get(key string) (Handle, bool) {
	if key == "" || p.closed.Load() {
		return nil, false
	}
	return p.lookup(p.foldKey(key))
}

func (p *poolImpl) Remove(ctx context.Context, key string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if key == "" {
		return ErrEmptyKey
	}
	if p.closed.Load() {
		return ErrClosed
	}
	key = p.foldKey(key)

	e, ok := p.detach(key)
	if !ok {
		// 不存在的 key 是 no-op，不是错误。
		return nil
	}
	if !e.transition(stateRemoved) {
		// 其他 goroutine（并发 Remove 或淘汰）已持有拆除权。
		return nil
	}
	return p.teardown(ctx, e, xmetrics.ReasonRemoved)
}

func (p *poolImpl) RemoveAll(ctx context.Context) (closed, total int) {
	if ctx == nil {
		ctx = context.Background()
	}
	return p.removeAll(ctx, xmetrics.ReasonRemoved)
}

func (p *poolImpl) removeAll(ctx context.Context, reason string) (closed, total int) {
	p.mu.Lock()
	detached := make([]*entry, 0, len(p.entries))
	for _, e := range p.entries {
		detached = append(detached, e)
	}
	p.entries = make(map[string]*entry)
	p.mu.Unlock()

	for _, e := range detached {
		total++
		if !e.transition(stateRemoved) {
			continue
		}
		if err := p.teardown(ctx, e, reason); err != nil {
			// 部分失败容忍：记日志继续，不阻断其余条目。
			p.logWarn("xpool: teardown failed during bulk removal",
				slog.String("key", e.key),
				slog.String("entry_id", e.id),
				slog.Any("error", err))
			continue
		}
		closed++
	}
	return closed, total
}

// detach 把条目移出池。只有当前映射到 key 的条目会被删除，
// 防止淘汰过程误删并发构建出的新条目。
func (p *poolImpl) detach(key string) (*entry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[key]
	if !ok {
		return nil, false
	}
	delete(p.entries, key)
	return e, true
}

// detachIf 仅当 key 仍映射到 e 时移出池。
func (p *poolImpl) detachIf(key string, e *entry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cur, ok := p.entries[key]; ok && cur == e {
		delete(p.entries, key)
	}
}

// teardown 拆除句柄。调用前必须已通过 transition 获得拆除权，
// 因此 Close 至多执行一次。
func (p *poolImpl) teardown(ctx context.Context, e *entry, reason string) error {
	err := e.handle.Close()
	e.markClosed()
	p.opts.recorder.EntryRemoved(ctx, reason)
	if err != nil {
		return fmt.Errorf("%w: key %q: %w", ErrTeardown, e.key, err)
	}
	p.logDebug("xpool: entry removed",
		slog.String("key", e.key),
		slog.String("entry_id", e.id),
		slog.String("reason", reason))
	return nil
}

func (p *poolImpl) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	n := 0
	for _, e := range p.entries {
		if e.isActive() {
			n++
		}
	}
	return n
}

func (p *poolImpl) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	if p.sweeper != nil {
		p.sweeper.stop()
	}
	p.removeAll(context.Background(), xmetrics.ReasonShutdown)
	return nil
}

func (p *poolImpl) logDebug(msg string, attrs ...slog.Attr) {
	if p.opts.logger != nil {
		p.opts.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
	}
}

func (p *poolImpl) logWarn(msg string, attrs ...slog.Attr) {
	if p.opts.logger != nil {
		p.opts.logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
	}
}

// 编译期接口检查。
var _ Pool = (*poolImpl)(nil)
