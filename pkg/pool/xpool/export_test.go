package xpool

import "time"

// SweepOnce 暴露给测试：以给定时刻执行一轮清扫，返回淘汰条目数。
func SweepOnce(p Pool, now time.Time) int {
	return p.(*poolImpl).sweepOnce(now)
}

// EntryState 暴露给测试：返回 key 对应条目的状态字符串，不存在返回空串。
func EntryState(p Pool, key string) string {
	impl := p.(*poolImpl)
	impl.mu.RLock()
	defer impl.mu.RUnlock()
	e, ok := impl.entries[impl.foldKey(key)]
	if !ok {
		return ""
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.String()
}

// LastAccess 暴露给测试：返回 key 对应条目的最后访问时间。
func LastAccess(p Pool, key string) (time.Time, bool) {
	impl := p.(*poolImpl)
	impl.mu.RLock()
	defer impl.mu.RUnlock()
	e, ok := impl.entries[impl.foldKey(key)]
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(0, e.lastAccess.Load()), true
}
