// Package xpool 提供会话句柄的并发资源池。
//
// 管理昂贵的外部会话句柄（如自动化会话）：同一 key 至多构建一次、
// 并发调用方复用同一句柄、闲置超时后由后台清扫回收。
//
// # 特性
//
//   - 至多一次构建：同一 key 的 N 个并发 GetOrCreate 只触发一次工厂调用，
//     所有等待者获得同一句柄（或同一错误）。基于 singleflight 实现。
//   - 构建不随等待者取消：调用方 ctx 取消只影响其自身等待，
//     进行中的构建继续完成并写入池，供后续调用方复用。
//   - 失败不保留：工厂失败的 key 不留条目，下一次调用重新构建。
//   - 精确一次拆除：并发 Remove/淘汰/关闭下句柄的 Close 只执行一次。
//   - 闲置淘汰：后台按固定周期清扫，闲置超过配置窗口的条目走与
//     Remove 相同的拆除路径。淘汰决策与访问续期在同一条目锁下完成，
//     不会淘汰正在被访问或构建中的条目。
//   - 部分失败容忍：RemoveAll 逐个拆除，单个句柄 Close 失败只记日志，
//     不阻断其余条目。
//
// # 生命周期
//
// 条目状态机：构建中（singleflight 飞行期，条目尚未入池）→ Active →
// （Evicting | Removed）→ Closed。只有一个 goroutine 能把条目迁出
// Active，句柄的所有权始终在池内：调用方只获得句柄引用，
// 不获得其生命周期控制。
//
// # 并发安全
//
// 所有方法都是并发安全的。Get 是无阻塞读；GetOrCreate 只在构建
// 未缓存的 key 时阻塞调用方，不同 key 的构建互不阻塞。
//
// 池本身不做方法级加锁策略，跨操作的 GLOBAL/RESOURCE 同步语义
// 由 xguard 包装层提供。
package xpool
