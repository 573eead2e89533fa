// Package xguard 提供声明式的方法级分层加锁。
//
// 调用点通过声明表（操作名 → 规则）宣告每个操作需要的同步强度，
// Manager 在调用拦截点透明地施加对应的锁策略：
//
//   - GLOBAL：全局一把锁，所有声明为 GLOBAL 的操作进程内串行。
//   - RESOURCE：每个资源 key 一把锁，同 key 串行、异 key 并行。
//   - NONE：不加锁，操作自身必须已内部并发安全。
//
// GLOBAL 与 RESOURCE 是相互独立的锁类别，不构成嵌套：
// GLOBAL 持有者不会隐式阻塞 RESOURCE 持有者，除非操作本身声明为 GLOBAL。
//
// # 获取协议
//
// 每次获取受超时约束（进程级默认值，可配置），不存在无界等待。
// 超时返回 [*TimeoutError]（可用 errors.Is 匹配 [ErrLockTimeout]），
// 且被包装的操作绝不会执行。获取成功后在所有退出路径
// （正常返回、错误返回、panic）上都应通过 defer 释放。
//
// # 锁表回收
//
// RESOURCE 锁条目按引用计数管理：获取方（持有者 + 等待者）计数，
// 归零即从表中删除。锁表因此只随"当前或近期被争用的 key"增长，
// 而不随历史 key 总量无界膨胀。这是对源设计中弱引用语义的
// 显式计数替代。
//
// # 观测
//
// 每次获取、释放、超时都经 xmetrics.Recorder 记录（纯观测副作用，
// 绝不构成正确性依赖）。
//
// # 与 xpool 的配合
//
// WrapPool 返回按 [DefaultPoolRules] 声明加锁的 Pool 装饰器：
//
//	mgr, _ := xguard.New(xguard.DefaultPoolRules())
//	pool, _ := xpool.New()
//	guarded := xguard.WrapPool(pool, mgr)
package xguard
