package xguard

import "strconv"

// Scope 表示操作声明的同步粒度。
type Scope int

const (
	// ScopeNone 不加锁，操作必须自身并发安全。
	ScopeNone Scope = iota
	// ScopeGlobal 全局锁，所有 GLOBAL 操作进程内串行。
	ScopeGlobal
	// ScopeResource 按资源 key 加锁，同 key 串行、异 key 并行。
	ScopeResource
)

func (s Scope) String() string {
	switch s {
	case ScopeNone:
		return "none"
	case ScopeGlobal:
		return "global"
	case ScopeResource:
		return "resource"
	default:
		return "scope(" + strconv.Itoa(int(s)) + ")"
	}
}

// Rule 声明一个操作的加锁规则。
type Rule struct {
	// Scope 是操作的同步粒度。
	Scope Scope

	// KeyArg 指定携带资源 key 的参数下标，仅 RESOURCE 作用域使用。
	// 零值 0 即默认行为：取第一个参数，且该参数必须是 string，
	// 否则 Acquire 在尝试任何锁之前返回 [ErrInvalidResourceKey]。
	KeyArg int
}

// RuleSet 是操作名到加锁规则的声明表，在构造期一次性给定。
// Acquire 遇到未声明的操作名时保守地按 GLOBAL 处理，
// 使未及声明的新操作宁可过度同步也不会欠同步。
type RuleSet map[string]Rule

// 被 WrapPool 拦截的池操作名。
const (
	OpGetOrCreate = "GetOrCreate"
	OpGet         = "Get"
	OpRemove      = "Remove"
	OpRemoveAll   = "RemoveAll"
	OpCount       = "Count"
	OpClose       = "Close"
)

// DefaultPoolRules 返回池操作的默认声明表。
//
// GetOrCreate/Remove 按资源 key 串行（key 为第一个参数）；
// Get/Count 是 xpool 内部已并发安全的无阻塞读，不加锁；
// RemoveAll/Close 是全局批量操作，取全局锁。
func DefaultPoolRules() RuleSet {
	return RuleSet{
		OpGetOrCreate: {Scope: ScopeResource},
		OpGet:         {Scope: ScopeNone},
		OpRemove:      {Scope: ScopeResource},
		OpRemoveAll:   {Scope: ScopeGlobal},
		OpCount:       {Scope: ScopeNone},
		OpClose:       {Scope: ScopeGlobal},
	}
}
