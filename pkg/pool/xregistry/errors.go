package xregistry

import "errors"

var (
	// ErrFactoryNotFound 表示完全限定名落在非空命名空间内但无精确匹配。
	// 纠正动作：检查名字拼写。
	ErrFactoryNotFound = errors.New("xregistry: factory not found")

	// ErrNamespaceEmpty 表示命名空间路径下没有任何注册项。
	// 纠正动作：在该命名空间注册一个实现。
	ErrNamespaceEmpty = errors.New("xregistry: namespace empty")

	// ErrDuplicateFactory 表示该名字已被注册。
	ErrDuplicateFactory = errors.New("xregistry: duplicate factory")

	// ErrEmptyName 表示注册或解析的名字为空。
	ErrEmptyName = errors.New("xregistry: empty name")

	// ErrNilFactory 表示注册的工厂为 nil。
	ErrNilFactory = errors.New("xregistry: nil factory")

	// ErrInvalidCacheSize 表示解析缓存容量配置无效。
	ErrInvalidCacheSize = errors.New("xregistry: invalid cache size")
)
