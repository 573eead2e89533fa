package xpoolconf

import (
	"fmt"
	"time"

	"github.com/omeyang/sessionkit/pkg/pool/xguard"
	"github.com/omeyang/sessionkit/pkg/pool/xpool"
)

// Settings 是会话池与锁管理器的外部配置面。
// 零值不可用，请从 [Default] 出发；Load/LoadBytes 只覆盖
// 文件中出现的字段，未出现的保留默认值。
type Settings struct {
	// InactivityTimeout 条目闲置回收窗口，0 关闭回收。
	InactivityTimeout time.Duration `koanf:"inactivity_timeout"`

	// SweepPeriod 回收扫描周期，0 表示取 InactivityTimeout。
	SweepPeriod time.Duration `koanf:"sweep_period"`

	// LockTimeout 锁获取超时。
	LockTimeout time.Duration `koanf:"lock_timeout"`

	// MaxLockKeys 锁表 key 数量上限，0 表示不限制。
	MaxLockKeys int `koanf:"max_lock_keys"`

	// ShardCount 锁表分片数，必须是 2 的幂。
	ShardCount int `koanf:"shard_count"`
}

// Default 返回默认配置。
func Default() *Settings {
	return &Settings{
		InactivityTimeout: xpool.DefaultInactivityTimeout,
		SweepPeriod:       xpool.DefaultInactivityTimeout,
		LockTimeout:       xguard.DefaultLockTimeout,
		MaxLockKeys:       0,
		ShardCount:        32,
	}
}

// Validate 校验配置值。
func (s *Settings) Validate() error {
	if s.InactivityTimeout < 0 {
		return fmt.Errorf("%w: inactivity_timeout %v is negative", ErrInvalidSettings, s.InactivityTimeout)
	}
	if s.SweepPeriod < 0 {
		return fmt.Errorf("%w: sweep_period %v is negative", ErrInvalidSettings, s.SweepPeriod)
	}
	if s.LockTimeout <= 0 {
		return fmt.Errorf("%w: lock_timeout %v must be positive", ErrInvalidSettings, s.LockTimeout)
	}
	if s.MaxLockKeys < 0 {
		return fmt.Errorf("%w: max_lock_keys %d is negative", ErrInvalidSettings, s.MaxLockKeys)
	}
	if s.ShardCount <= 0 || s.ShardCount&(s.ShardCount-1) != 0 {
		return fmt.Errorf("%w: shard_count %d must be a power of two", ErrInvalidSettings, s.ShardCount)
	}
	return nil
}

// PoolOptions 返回应用到 xpool.New 的选项。
func (s *Settings) PoolOptions() []xpool.Option {
	return []xpool.Option{
		xpool.WithInactivityTimeout(s.InactivityTimeout),
		xpool.WithSweepPeriod(s.SweepPeriod),
	}
}

// GuardOptions 返回应用到 xguard.New 的选项。
func (s *Settings) GuardOptions() []xguard.Option {
	opts := []xguard.Option{
		xguard.WithLockTimeout(s.LockTimeout),
		xguard.WithShardCount(s.ShardCount),
	}
	if s.MaxLockKeys > 0 {
		opts = append(opts, xguard.WithMaxKeys(s.MaxLockKeys))
	}
	return opts
}
