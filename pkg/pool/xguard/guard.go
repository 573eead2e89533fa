package xguard

import (
	"context"
	"io"
)

// Grant 表示一次成功的锁授予。
// Release 是幂等的：第一次调用释放锁并返回 nil，后续调用返回 [ErrLockNotHeld]。
type Grant interface {
	// Release 释放锁。必须在操作的所有退出路径上调用（建议 defer）。
	Release() error

	// Scope 返回授予锁的作用域。
	Scope() Scope

	// Key 返回资源 key；GLOBAL/NONE 作用域时为空串。
	Key() string
}

// Manager 按声明表对操作施加锁策略。
// 所有方法都是并发安全的。
type Manager interface {
	io.Closer

	// Acquire 按 op 声明的规则获取锁。
	// GLOBAL/RESOURCE 作用域阻塞至多配置的超时时长，超时返回
	// [*TimeoutError] 且被包装的操作不应执行；NONE 作用域立即返回
	// 无操作的 Grant。RESOURCE 作用域从 args 解析资源 key
	// （规则指定的参数下标，默认第一个参数且必须是 string），
	// 解析失败在尝试任何锁之前返回 [ErrInvalidResourceKey]。
	// ctx 取消时返回 ctx.Err()；Manager 已关闭返回 [ErrClosed]。
	Acquire(ctx context.Context, op string, args ...any) (Grant, error)

	// ActiveLocks 返回当前被持有的锁数量（瞬时快照）。
	ActiveLocks() int

	// Keys 返回锁表中当前存在的 RESOURCE key（持有者 + 等待者），
	// 仅用于调试与测试。返回值是快照，不保证跨分片原子性。
	Keys() []string
}

// New 创建 Manager。
// rules 为 nil 时等价于空表（所有操作按 GLOBAL 处理）。
// 配置无效时返回错误（如分片数不是 2 的幂）。
func New(rules RuleSet, opts ...Option) (Manager, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return newManagerImpl(rules, &o), nil
}
