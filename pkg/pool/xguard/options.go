package xguard

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/omeyang/sessionkit/pkg/observability/xmetrics"
)

const (
	// DefaultLockTimeout 默认的锁获取超时。
	DefaultLockTimeout = 150 * time.Millisecond

	defaultShardCount = 32
	maxShardCount     = 1 << 16 // 65536
)

// Option 定义 Manager 可选配置。
type Option func(*options)

type options struct {
	lockTimeout time.Duration
	shardCount  int
	maxKeys     int
	logger      *slog.Logger
	recorder    xmetrics.Recorder
}

func defaultOptions() options {
	return options{
		lockTimeout: DefaultLockTimeout,
		shardCount:  defaultShardCount,
		recorder:    xmetrics.NoopRecorder{},
	}
}

// WithLockTimeout 设置锁获取超时（毫秒粒度即可）。
// d <= 0 时取 [DefaultLockTimeout]。单次调用可通过 ctx 的更早
// deadline 进一步收紧，两者取先到者。
func WithLockTimeout(d time.Duration) Option {
	// 在闭包外归一化，避免闭包写捕获变量导致并发复用时的数据竞争。
	if d <= 0 {
		d = DefaultLockTimeout
	}
	return func(o *options) {
		o.lockTimeout = d
	}
}

// WithShardCount 设置 RESOURCE 锁表的分片数量。
// n 必须为正整数且为 2 的幂，上限 65536，否则 New 返回错误。默认 32。
func WithShardCount(n int) Option {
	return func(o *options) {
		o.shardCount = n
	}
}

// WithMaxKeys 限制锁表同时存在的 RESOURCE key 数量。
// 达到上限时新的 Acquire 返回 [ErrMaxKeysExceeded]。
// n <= 0 表示不限制（默认）。
func WithMaxKeys(n int) Option {
	if n < 0 {
		n = 0
	}
	return func(o *options) {
		o.maxKeys = n
	}
}

// WithLogger 设置日志器。nil 表示不输出日志（默认）。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRecorder 设置观测指标记录器。nil 归一化为 NoopRecorder。
func WithRecorder(r xmetrics.Recorder) Option {
	return func(o *options) {
		o.recorder = xmetrics.OrNoop(r)
	}
}

func (o *options) validate() error {
	sc := o.shardCount
	if sc <= 0 || sc > maxShardCount || sc&(sc-1) != 0 {
		return fmt.Errorf("%w: must be a positive power of 2 (max %d), got %d",
			ErrInvalidShardCount, maxShardCount, sc)
	}
	return nil
}
