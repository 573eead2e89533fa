package xpool

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/omeyang/sessionkit/pkg/observability/xmetrics"
)

const (
	// DefaultInactivityTimeout 默认闲置淘汰窗口。
	DefaultInactivityTimeout = 30 * time.Minute

	// minSweepPeriod 清扫周期下限。
	// 底层 cron 调度按秒粒度触发，低于 1s 的周期没有意义。
	minSweepPeriod = time.Second
)

// Option 定义 Pool 可选配置。
type Option func(*options)

type options struct {
	inactivityTimeout time.Duration
	sweepPeriod       time.Duration
	buildTimeout      time.Duration
	caseInsensitive   bool
	logger            *slog.Logger
	recorder          xmetrics.Recorder
}

func defaultOptions() options {
	return options{
		inactivityTimeout: DefaultInactivityTimeout,
		recorder:          xmetrics.NoopRecorder{},
	}
}

// WithInactivityTimeout 设置闲置淘汰窗口。
// 条目闲置超过 d 后由下一次清扫移除。d == 0 表示关闭闲置淘汰，
// 负值使 New 返回错误。默认 [DefaultInactivityTimeout]。
func WithInactivityTimeout(d time.Duration) Option {
	return func(o *options) {
		o.inactivityTimeout = d
	}
}

// WithSweepPeriod 设置后台清扫周期。
// 默认等于闲置淘汰窗口，下限 1s。d == 0 时取默认，负值使 New 返回错误。
func WithSweepPeriod(d time.Duration) Option {
	return func(o *options) {
		o.sweepPeriod = d
	}
}

// WithBuildTimeout 设置工厂构建的独立超时。
// 构建与调用方 ctx 解耦，此超时是构建 ctx 的唯一 deadline。
// d == 0 表示不限时（默认），需确保工厂自身不会无限阻塞；
// 负值使 New 返回错误。
func WithBuildTimeout(d time.Duration) Option {
	return func(o *options) {
		o.buildTimeout = d
	}
}

// WithCaseInsensitiveKeys 开启大小写不敏感的 key 比较。
// 默认大小写敏感。开启后所有 key 在 API 边界统一折叠为小写。
func WithCaseInsensitiveKeys() Option {
	return func(o *options) {
		o.caseInsensitive = true
	}
}

// WithLogger 设置日志器。
// nil 表示不输出日志（默认）。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRecorder 设置观测指标记录器。
// nil 归一化为 NoopRecorder。
func WithRecorder(r xmetrics.Recorder) Option {
	return func(o *options) {
		o.recorder = xmetrics.OrNoop(r)
	}
}

func (o *options) validate() error {
	if o.inactivityTimeout < 0 {
		return fmt.Errorf("%w: negative inactivity timeout %v", ErrInvalidConfig, o.inactivityTimeout)
	}
	if o.sweepPeriod < 0 {
		return fmt.Errorf("%w: negative sweep period %v", ErrInvalidConfig, o.sweepPeriod)
	}
	if o.buildTimeout < 0 {
		return fmt.Errorf("%w: negative build timeout %v", ErrInvalidConfig, o.buildTimeout)
	}
	if o.sweepPeriod == 0 {
		o.sweepPeriod = o.inactivityTimeout
	}
	if o.inactivityTimeout > 0 && o.sweepPeriod < minSweepPeriod {
		o.sweepPeriod = minSweepPeriod
	}
	return nil
}
