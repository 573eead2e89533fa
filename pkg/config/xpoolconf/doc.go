// Package xpoolconf 提供会话池与锁管理器的配置装载。
//
// 基于 koanf 解析 YAML/JSON，未出现的字段保留默认值，
// 装载后统一经 Validate 校验。支持 fsnotify 文件监视，
// 变更防抖后自动重载并回调。
//
// 典型用法:
//
//	settings, err := xpoolconf.Load("/etc/sessionkit/pool.yaml")
//	if err != nil { ... }
//	pool, err := xpool.New(settings.PoolOptions()...)
//	mgr, err := xguard.New(xguard.DefaultPoolRules(), settings.GuardOptions()...)
package xpoolconf
