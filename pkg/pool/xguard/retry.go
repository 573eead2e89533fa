package xguard

import (
	"context"
	"errors"
	"time"

	retry "github.com/avast/retry-go/v5"
)

const (
	// DefaultRetryAttempts 默认总尝试次数（包含首次尝试）。
	DefaultRetryAttempts = 3

	// DefaultRetryDelay 默认重试间隔。
	DefaultRetryDelay = 50 * time.Millisecond
)

// RetryOption 定义 Do 的重试配置。
type RetryOption func(*retryConfig)

type retryConfig struct {
	attempts uint
	delay    time.Duration
}

// WithRetryAttempts 设置总尝试次数（包含首次尝试）。
// n == 0 表示无限重试（直到 ctx 取消）。默认 [DefaultRetryAttempts]。
func WithRetryAttempts(n uint) RetryOption {
	return func(c *retryConfig) {
		c.attempts = n
	}
}

// WithRetryDelay 设置重试间隔。
// d <= 0 时取 [DefaultRetryDelay]。
func WithRetryDelay(d time.Duration) RetryOption {
	if d <= 0 {
		d = DefaultRetryDelay
	}
	return func(c *retryConfig) {
		c.delay = d
	}
}

// Do 执行 fn，仅在锁获取超时（[ErrLockTimeout]）时重试。
//
// 锁超时意味着"被争用，稍后重试即可恢复"；其他错误
// （ErrInvalidResourceKey、ErrClosed、构建失败等）属于
// "坏了，重试无意义"，立即返回。底层使用 avast/retry-go/v5。
func Do(ctx context.Context, fn func(ctx context.Context) error, opts ...RetryOption) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := retryConfig{
		attempts: DefaultRetryAttempts,
		delay:    DefaultRetryDelay,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	retryOpts := []retry.Option{
		retry.Context(ctx),
		retry.Delay(cfg.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrLockTimeout)
		}),
	}
	if cfg.attempts == 0 {
		retryOpts = append(retryOpts, retry.UntilSucceeded())
	} else {
		retryOpts = append(retryOpts, retry.Attempts(cfg.attempts))
	}

	return retry.New(retryOpts...).Do(func() error {
		return fn(ctx)
	})
}
