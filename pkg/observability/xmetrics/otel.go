package xmetrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	defaultInstrumentationName = "github.com/omeyang/sessionkit/pkg/observability/xmetrics"

	metricLockAcquired = "sessionkit.lock.acquired.total"
	metricLockTimeout  = "sessionkit.lock.timeout.total"
	metricLockActive   = "sessionkit.lock.active"
	metricLockWait     = "sessionkit.lock.wait.duration"
	metricEntryCreated = "sessionkit.pool.entry.created.total"
	metricEntryRemoved = "sessionkit.pool.entry.removed.total"
	metricEntryBuild   = "sessionkit.pool.entry.build.duration"

	attrScope     = "scope"
	attrOperation = "operation"
	attrReason    = "reason"
)

type otelConfig struct {
	instrumentationName string
	meterProvider       metric.MeterProvider
}

// Option 定义 OTel Recorder 的配置选项。
type Option func(*otelConfig)

// WithInstrumentationName 设置 OTel instrumentation 名称。
// 空字符串被静默忽略。
func WithInstrumentationName(name string) Option {
	return func(cfg *otelConfig) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithMeterProvider 设置 MeterProvider。
// nil 被静默忽略，保持全局默认。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *otelConfig) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// NewOTelRecorder 创建基于 OpenTelemetry 的 Recorder。
// 默认使用全局 MeterProvider。
func NewOTelRecorder(opts ...Option) (Recorder, error) {
	cfg := &otelConfig{
		instrumentationName: defaultInstrumentationName,
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	meter := cfg.meterProvider.Meter(cfg.instrumentationName)

	lockAcquired, err := meter.Int64Counter(
		metricLockAcquired,
		metric.WithDescription("total successful lock acquisitions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create counter failed: %w", err)
	}

	lockTimeout, err := meter.Int64Counter(
		metricLockTimeout,
		metric.WithDescription("total lock acquisition timeouts"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create counter failed: %w", err)
	}

	lockActive, err := meter.Int64UpDownCounter(
		metricLockActive,
		metric.WithDescription("currently held locks"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create updowncounter failed: %w", err)
	}

	lockWait, err := meter.Float64Histogram(
		metricLockWait,
		metric.WithDescription("lock acquisition wait duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create histogram failed: %w", err)
	}

	entryCreated, err := meter.Int64Counter(
		metricEntryCreated,
		metric.WithDescription("total pool entries created"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create counter failed: %w", err)
	}

	entryRemoved, err := meter.Int64Counter(
		metricEntryRemoved,
		metric.WithDescription("total pool entries removed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create counter failed: %w", err)
	}

	entryBuild, err := meter.Float64Histogram(
		metricEntryBuild,
		metric.WithDescription("pool entry construction duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: create histogram failed: %w", err)
	}

	return &otelRecorder{
		lockAcquired: lockAcquired,
		lockTimeout:  lockTimeout,
		lockActive:   lockActive,
		lockWait:     lockWait,
		entryCreated: entryCreated,
		entryRemoved: entryRemoved,
		entryBuild:   entryBuild,
	}, nil
}

type otelRecorder struct {
	lockAcquired metric.Int64Counter
	lockTimeout  metric.Int64Counter
	lockActive   metric.Int64UpDownCounter
	lockWait     metric.Float64Histogram
	entryCreated metric.Int64Counter
	entryRemoved metric.Int64Counter
	entryBuild   metric.Float64Histogram
}

// normalizeCtx 归一化 nil context，防止自定义调用路径传入 nil 导致 panic。
func normalizeCtx(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func lockAttrs(scope, op string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String(attrScope, scope),
		attribute.String(attrOperation, op),
	)
}

// LockAcquired 记录锁获取成功，并使活跃锁计数 +1。
func (r *otelRecorder) LockAcquired(ctx context.Context, scope, op string, wait time.Duration) {
	ctx = normalizeCtx(ctx)
	attrs := lockAttrs(scope, op)
	r.lockAcquired.Add(ctx, 1, attrs)
	r.lockActive.Add(ctx, 1, attrs)
	r.lockWait.Record(ctx, wait.Seconds(), attrs)
}

// LockTimeout 记录锁获取超时。
func (r *otelRecorder) LockTimeout(ctx context.Context, scope, op string) {
	ctx = normalizeCtx(ctx)
	r.lockTimeout.Add(ctx, 1, lockAttrs(scope, op))
}

// LockReleased 记录锁释放，并使活跃锁计数 -1。
func (r *otelRecorder) LockReleased(ctx context.Context, scope, op string) {
	ctx = normalizeCtx(ctx)
	r.lockActive.Add(ctx, -1, lockAttrs(scope, op))
}

// EntryCreated 记录池条目创建成功。
func (r *otelRecorder) EntryCreated(ctx context.Context, elapsed time.Duration) {
	ctx = normalizeCtx(ctx)
	r.entryCreated.Add(ctx, 1)
	r.entryBuild.Record(ctx, elapsed.Seconds())
}

// EntryRemoved 记录池条目移除。
func (r *otelRecorder) EntryRemoved(ctx context.Context, reason string) {
	ctx = normalizeCtx(ctx)
	r.entryRemoved.Add(ctx, 1, metric.WithAttributes(attribute.String(attrReason, reason)))
}

var _ Recorder = (*otelRecorder)(nil)
