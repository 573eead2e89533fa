// Package pool 提供会话句柄池相关的子包。
//
// 子包列表：
//   - xpool: 并发安全的句柄缓存，按 key 至多构建一次，支持闲置回收
//   - xguard: 声明式分级锁（GLOBAL/RESOURCE/NONE）与池装饰器
//   - xregistry: 符号名到句柄工厂的静态注册表
//
// 三者自底向上组合：xregistry 解析工厂，xpool 缓存句柄，
// xguard 在池外统一施加锁策略。
package pool
