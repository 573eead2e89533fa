// Package xregistry 提供符号名到资源工厂的静态注册表。
//
// 注册表在启动期一次性填充（Register），之后以读为主（Resolve）。
// 解析顺序：先精确匹配完全限定名；未命中时把名字当作点分命名空间，
// 取该命名空间下按字典序最小的注册项，保证确定性。
// 完全限定名落在非空命名空间内却无精确匹配时返回
// [ErrFactoryNotFound] 而不是静默挑选邻近实现——修名字和补注册
// 是两种不同的纠正动作，错误类型必须可区分（见 [ErrNamespaceEmpty]）。
//
// 解析结果经 LRU 缓存避免重复扫描，任何 Register 都会使缓存失效。
//
// 典型用法:
//
//	reg, err := xregistry.New()
//	if err != nil { ... }
//	if err := reg.Register("browsers.chrome", newChrome); err != nil { ... }
//	factory, err := reg.Resolve("browsers.chrome")
package xregistry
