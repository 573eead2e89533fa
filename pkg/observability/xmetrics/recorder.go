package xmetrics

import (
	"context"
	"time"
)

// 条目移除原因，作为有限枚举维度上报。
const (
	// ReasonRemoved 表示调用方显式移除。
	ReasonRemoved = "removed"
	// ReasonEvicted 表示闲置超时被后台清扫移除。
	ReasonEvicted = "evicted"
	// ReasonShutdown 表示池关闭时批量移除。
	ReasonShutdown = "shutdown"
)

// Recorder 定义锁与池事件的观测接口。
// 所有方法必须并发安全且不得阻塞（实现内部应快速返回）。
// 实现不得因记录失败影响调用方，错误应在实现内部吞掉或降级。
type Recorder interface {
	// LockAcquired 记录一次锁获取成功。
	// wait 为从请求到获取的等待时长。
	LockAcquired(ctx context.Context, scope, op string, wait time.Duration)

	// LockTimeout 记录一次锁获取超时。
	LockTimeout(ctx context.Context, scope, op string)

	// LockReleased 记录一次锁释放。
	LockReleased(ctx context.Context, scope, op string)

	// EntryCreated 记录一次池条目创建成功。
	// elapsed 为工厂函数构建耗时。
	EntryCreated(ctx context.Context, elapsed time.Duration)

	// EntryRemoved 记录一次池条目移除。
	// reason 取 [ReasonRemoved]、[ReasonEvicted] 或 [ReasonShutdown]。
	EntryRemoved(ctx context.Context, reason string)
}

// NoopRecorder 是空实现，零值可用。
type NoopRecorder struct{}

// LockAcquired 空实现。
func (NoopRecorder) LockAcquired(context.Context, string, string, time.Duration) {}

// LockTimeout 空实现。
func (NoopRecorder) LockTimeout(context.Context, string, string) {}

// LockReleased 空实现。
func (NoopRecorder) LockReleased(context.Context, string, string) {}

// EntryCreated 空实现。
func (NoopRecorder) EntryCreated(context.Context, time.Duration) {}

// EntryRemoved 空实现。
func (NoopRecorder) EntryRemoved(context.Context, string) {}

// OrNoop 归一化 Recorder：nil 返回 NoopRecorder，否则原样返回。
// 各包的 options 在装配期调用，使内部代码无需判空。
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}

var _ Recorder = NoopRecorder{}
