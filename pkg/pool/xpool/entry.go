package xpool

import (
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// entryState 表示条目的生命周期状态。
// 构建中的条目不会出现在池内（singleflight 飞行期），
// 因此状态机从 Active 开始。
type entryState int32

const (
	stateActive entryState = iota
	stateEvicting
	stateRemoved
	stateClosed
)

func (s entryState) String() string {
	switch s {
	case stateActive:
		return "active"
	case stateEvicting:
		return "evicting"
	case stateRemoved:
		return "removed"
	case stateClosed:
		return "closed"
	default:
		return "state(" + strconv.Itoa(int(s)) + ")"
	}
}

// entry 持有一个句柄及其元数据，所有权归池。
//
// mu 同时保护状态迁移与淘汰决策：访问方持 RLock 续期并返回句柄，
// 淘汰/移除方持 Lock 检查闲置并把状态迁出 Active。
// 访问期间淘汰方被 RLock 阻挡，杜绝"刚续期就被淘汰"的竞争。
type entry struct {
	id        string
	key       string
	handle    Handle
	createdAt time.Time

	mu         sync.RWMutex
	state      entryState   // guarded by mu
	lastAccess atomic.Int64 // unix nano；RLock 下写入，Lock 下读取
}

func newEntry(key string, h Handle, now time.Time) *entry {
	e := &entry{
		id:        uuid.NewString(),
		key:       key,
		handle:    h,
		createdAt: now,
	}
	e.lastAccess.Store(now.UnixNano())
	return e
}

// touch 在 Active 状态下续期并返回句柄。
// 非 Active 返回 false，调用方视为未命中。
func (e *entry) touch(now time.Time) (Handle, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.state != stateActive {
		return nil, false
	}
	e.lastAccess.Store(now.UnixNano())
	return e.handle, true
}

// transition 把条目迁出 Active。
// 只有第一个调用者成功并获得拆除权，返回 false 表示其他 goroutine
// 已经迁移过状态（句柄的 Close 归它负责）。
func (e *entry) transition(to entryState) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateActive {
		return false
	}
	e.state = to
	return true
}

// transitionIfIdle 在闲置超过 window 时迁入 Evicting。
// 与 touch 在同一把锁上互斥：持有 Lock 时不存在进行中的访问。
func (e *entry) transitionIfIdle(now time.Time, window time.Duration) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateActive {
		return false
	}
	idle := now.Sub(time.Unix(0, e.lastAccess.Load()))
	if idle <= window {
		return false
	}
	e.state = stateEvicting
	return true
}

// markClosed 标记句柄已拆除。
func (e *entry) markClosed() {
	e.mu.Lock()
	e.state = stateClosed
	e.mu.Unlock()
}

// isActive 返回条目是否处于 Active 状态。
func (e *entry) isActive() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state == stateActive
}
