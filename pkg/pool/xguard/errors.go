package xguard

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrLockTimeout 表示锁在配置的超时内未能获取。
	// 被包装的操作未执行，重试即可恢复。
	// 实际返回值为 [*TimeoutError]，携带 scope 与 key。
	ErrLockTimeout = errors.New("xguard: lock acquisition timed out")

	// ErrInvalidResourceKey 表示 RESOURCE 作用域的操作无法解析出资源 key。
	// 这是调用方或声明表的缺陷，不是瞬时错误，重试无意义。
	ErrInvalidResourceKey = errors.New("xguard: invalid resource key")

	// ErrLockNotHeld 表示锁已被释放。
	// Grant.Release 第二次及后续调用时返回此错误。
	ErrLockNotHeld = errors.New("xguard: lock not held")

	// ErrClosed 表示 Manager 已关闭。
	ErrClosed = errors.New("xguard: closed")

	// ErrMaxKeysExceeded 表示锁表已达到最大 key 数量限制。
	ErrMaxKeysExceeded = errors.New("xguard: max lock keys exceeded")

	// ErrInvalidShardCount 表示分片数配置无效。
	ErrInvalidShardCount = errors.New("xguard: invalid shard count")
)

// TimeoutError 携带超时发生时的作用域与目标信息。
// errors.Is(err, ErrLockTimeout) 匹配为真。
type TimeoutError struct {
	// Scope 是超时锁的作用域（GLOBAL 或 RESOURCE）。
	Scope Scope
	// Op 是被拦截的操作名。
	Op string
	// Key 是资源 key；GLOBAL 作用域时为空串。
	Key string
	// Timeout 是生效的超时时长。
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	if e.Scope == ScopeResource {
		return fmt.Sprintf("xguard: lock acquisition timed out after %v (scope=%s op=%s key=%q)",
			e.Timeout, e.Scope, e.Op, e.Key)
	}
	return fmt.Sprintf("xguard: lock acquisition timed out after %v (scope=%s op=%s)",
		e.Timeout, e.Scope, e.Op)
}

// Is 使 errors.Is(err, ErrLockTimeout) 成立。
func (e *TimeoutError) Is(target error) bool {
	return target == ErrLockTimeout
}
