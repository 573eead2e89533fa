package xguard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
)

// managerImpl 是 Manager 的实现。
//
// GLOBAL 是一个常驻的单锁条目；RESOURCE 锁表按 key 分片，
// 条目按引用计数（持有者 + 等待者）管理，归零即删除。
type managerImpl struct {
	rules  RuleSet
	opts   *options
	global *lockEntry
	shards []shard
	mask   uint64

	keyCount atomic.Int64
	active   atomic.Int64
	closed   atomic.Bool
	done     chan struct{}
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

// lockEntry 的 ch 是容量 1 的 channel，用作互斥量：
// 发送成功 = 获取锁，发送阻塞 = 锁被占用，接收 = 释放锁。
type lockEntry struct {
	ch     chan struct{}
	refcnt atomic.Int32
}

func newManagerImpl(rules RuleSet, opts *options) *managerImpl {
	if rules == nil {
		rules = RuleSet{}
	}
	shards := make([]shard, opts.shardCount)
	for i := range shards {
		shards[i].entries = make(map[string]*lockEntry)
	}
	return &managerImpl{
		rules:  rules,
		opts:   opts,
		global: &lockEntry{ch: make(chan struct{}, 1)},
		shards: shards,
		mask:   uint64(opts.shardCount - 1),
		done:   make(chan struct{}),
	}
}

func (m *managerImpl) Acquire(ctx context.Context, op string, args ...any) (Grant, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	// 快速检查：ctx 已取消时避免无谓的锁表操作。
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.closed.Load() {
		return nil, ErrClosed
	}

	rule, ok := m.rules[op]
	if !ok {
		// 未声明的操作保守按 GLOBAL 处理，宁可过度同步。
		rule = Rule{Scope: ScopeGlobal}
	}

	switch rule.Scope {
	case ScopeNone:
		return &grantImpl{m: m, scope: ScopeNone, op: op}, nil
	case ScopeGlobal:
		return m.acquireEntry(ctx, op, ScopeGlobal, "", m.global)
	case ScopeResource:
		key, err := resolveKey(op, rule, args)
		if err != nil {
			return nil, err
		}
		entry, err := m.getOrCreateEntry(key)
		if err != nil {
			return nil, err
		}
		g, err := m.acquireEntry(ctx, op, ScopeResource, key, entry)
		if err != nil {
			m.releaseRef(key, entry)
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("xguard: op %s declares unknown scope %d", op, rule.Scope)
	}
}

// resolveKey 从操作参数解析资源 key。
// 规则指定的参数下标（默认 0，即第一个参数）必须是非空 string，
// 否则返回 [ErrInvalidResourceKey]——这发生在尝试任何锁之前。
func resolveKey(op string, rule Rule, args []any) (string, error) {
	idx := rule.KeyArg
	if idx < 0 || idx >= len(args) {
		return "", fmt.Errorf("%w: op %s has no argument at index %d", ErrInvalidResourceKey, op, idx)
	}
	key, ok := args[idx].(string)
	if !ok {
		return "", fmt.Errorf("%w: op %s argument %d is %T, want string", ErrInvalidResourceKey, op, idx, args[idx])
	}
	if key == "" {
		return "", fmt.Errorf("%w: op %s resolved an empty key", ErrInvalidResourceKey, op)
	}
	return key, nil
}

// acquireEntry 在配置的超时内获取条目锁。
// ctx 携带更早 deadline 时以 ctx 为准（返回 ctx.Err() 而非超时错误）。
func (m *managerImpl) acquireEntry(ctx context.Context, op string, scope Scope, key string, entry *lockEntry) (Grant, error) {
	start := time.Now()
	timeout := m.opts.lockTimeout
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case entry.ch <- struct{}{}:
		wait := time.Since(start)
		m.active.Add(1)
		m.opts.recorder.LockAcquired(ctx, scope.String(), op, wait)
		m.logDebug("xguard: lock acquired",
			slog.String("scope", scope.String()),
			slog.String("op", op),
			slog.String("key", key),
			slog.Duration("wait", wait),
			slog.Int64("active", m.active.Load()))
		return &grantImpl{m: m, scope: scope, op: op, key: key, entry: entry}, nil
	case <-timer.C:
		m.opts.recorder.LockTimeout(ctx, scope.String(), op)
		m.logDebug("xguard: lock timeout",
			slog.String("scope", scope.String()),
			slog.String("op", op),
			slog.String("key", key),
			slog.Duration("timeout", timeout))
		return nil, &TimeoutError{Scope: scope, Op: op, Key: key, Timeout: timeout}
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.done:
		return nil, ErrClosed
	}
}

func (m *managerImpl) getShard(key string) *shard {
	h := xxhash.Sum64String(key)
	return &m.shards[h&m.mask]
}

// getOrCreateEntry 获取或创建 RESOURCE 锁条目，并增加引用计数。
func (m *managerImpl) getOrCreateEntry(key string) (*lockEntry, error) {
	s := m.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.closed.Load() {
		return nil, ErrClosed
	}

	e, ok := s.entries[key]
	if !ok {
		if m.opts.maxKeys > 0 {
			// CAS 严格限制 key 数量，避免跨分片并发突破上限。
			for {
				cur := m.keyCount.Load()
				if cur >= int64(m.opts.maxKeys) {
					return nil, ErrMaxKeysExceeded
				}
				if m.keyCount.CompareAndSwap(cur, cur+1) {
					break
				}
			}
		} else {
			m.keyCount.Add(1)
		}
		e = &lockEntry{ch: make(chan struct{}, 1)}
		s.entries[key] = e
	}
	e.refcnt.Add(1)
	return e, nil
}

// releaseRef 减少引用计数，归零时从锁表删除。
// 这是对弱引用回收语义的显式替代：锁表只保留仍被引用的条目。
func (m *managerImpl) releaseRef(key string, entry *lockEntry) {
	s := m.getShard(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.refcnt.Add(-1) == 0 {
		delete(s.entries, key)
		m.keyCount.Add(-1)
	}
}

func (m *managerImpl) ActiveLocks() int {
	return int(max(m.active.Load(), 0))
}

func (m *managerImpl) Keys() []string {
	keys := make([]string, 0, max(m.keyCount.Load(), 0))
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		for k := range s.entries {
			keys = append(keys, k)
		}
		s.mu.Unlock()
	}
	return keys
}

// Close 拒绝新的获取并唤醒所有等待者（返回 ErrClosed）。
// 已持有的 Grant 不受影响，仍可正常 Release。
func (m *managerImpl) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	close(m.done)
	return nil
}

func (m *managerImpl) logDebug(msg string, attrs ...slog.Attr) {
	if m.opts.logger != nil {
		m.opts.logger.LogAttrs(context.Background(), slog.LevelDebug, msg, attrs...)
	}
}

// grantImpl 实现 Grant 接口。scope 为 NONE 时 entry 为 nil。
type grantImpl struct {
	m     *managerImpl
	scope Scope
	op    string
	key   string
	entry *lockEntry
	done  atomic.Bool
}

func (g *grantImpl) Release() error {
	if !g.done.CompareAndSwap(false, true) {
		return ErrLockNotHeld
	}
	if g.scope == ScopeNone {
		return nil
	}
	<-g.entry.ch
	if g.scope == ScopeResource {
		g.m.releaseRef(g.key, g.entry)
	}
	g.m.active.Add(-1)
	g.m.opts.recorder.LockReleased(context.Background(), g.scope.String(), g.op)
	g.m.logDebug("xguard: lock released",
		slog.String("scope", g.scope.String()),
		slog.String("op", g.op),
		slog.String("key", g.key),
		slog.Int64("active", g.m.active.Load()))
	return nil
}

func (g *grantImpl) Scope() Scope {
	return g.scope
}

func (g *grantImpl) Key() string {
	return g.key
}

// 编译期接口检查。
var (
	_ Manager = (*managerImpl)(nil)
	_ Grant   = (*grantImpl)(nil)
)
