// Package xmetrics 提供 sessionkit 的锁与池观测指标。
//
// # 设计理念
//
// 锁的获取/超时/释放与池条目的创建/移除都是观测性副作用，
// 绝不构成正确性依赖：Recorder 的任意实现（包括 Noop）都不影响
// xpool/xguard 的行为。
//
// # 使用方式
//
// 库内部通过 Recorder 接口解耦，默认 NoopRecorder（零开销）。
// 生产环境注入 NewOTelRecorder 创建的 OpenTelemetry 实现：
//
//	rec, err := xmetrics.NewOTelRecorder()
//	pool, err := xpool.New(xpool.WithRecorder(rec))
//
// # 基数控制
//
// 资源 key 不作为指标属性上报（key 基数不可控），
// 只上报 scope/operation/reason 等有限枚举维度。
// key 级别的细节通过 slog 日志输出。
package xmetrics
