package xpool

import (
	"context"
	"io"
)

// Handle 表示一个由池管理的外部会话句柄。
// Close 是终态拆除操作，由池精确调用一次；调用方绝不应自行关闭
// 从池中取得的句柄。
type Handle interface {
	io.Closer
}

// Factory 定义按 key 构建句柄的工厂函数。
// 池保证同一 key 不会并发调用工厂；不同 key 可能并发调用，
// 实现必须对此安全。ctx 与调用方 ctx 解耦（构建不随等待者取消），
// 仅携带可选的构建超时。
type Factory func(ctx context.Context, key string) (Handle, error)

// Pool 定义并发资源池接口。
// 所有方法都是并发安全的。
type Pool interface {
	io.Closer

	// GetOrCreate 返回 key 对应的句柄，未命中时调用 factory 构建。
	// 同一 key 的并发调用只触发一次构建，所有等待者获得同一结果。
	// 工厂失败时错误同步返回给本轮所有等待者，条目不保留。
	// ctx 取消只结束本调用方的等待，不中止进行中的构建。
	// key 不得为空，否则返回 [ErrEmptyKey]；factory 不得为 nil，
	// 否则返回 [ErrNilFactory]；池已关闭返回 [ErrClosed]。
	GetOrCreate(ctx context.Context, key string, factory Factory) (Handle, error)

	// Get 无阻塞查询。key 不存在或条目不处于 Active 状态时返回 false，
	// 绝不返回非 Active 状态的句柄。命中会续期条目的最后访问时间。
	Get(key string) (Handle, bool)

	// Remove 移除条目并精确一次拆除句柄。
	// key 不存在时为 no-op，返回 nil。拆除失败返回包装了
	// [ErrTeardown] 的错误，条目仍然被移除。
	Remove(ctx context.Context, key string) error

	// RemoveAll 移除全部条目并逐个拆除句柄。
	// 返回成功拆除数与条目总数。单个拆除失败只记日志，
	// 不阻断其余条目（部分失败容忍）。
	RemoveAll(ctx context.Context) (closed, total int)

	// Count 返回当前处于 Active 状态的条目数。
	Count() int
}

// New 创建资源池。
// 配置无效时返回错误。闲置淘汰默认开启（30 分钟窗口），
// WithInactivityTimeout(0) 可关闭。
func New(opts ...Option) (Pool, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return newPoolImpl(&o), nil
}
