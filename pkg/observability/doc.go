// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xmetrics: 池与锁事件的指标记录接口及 OpenTelemetry 实现
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范
//   - 指标只是副作用，永远不构成正确性依赖
package observability
