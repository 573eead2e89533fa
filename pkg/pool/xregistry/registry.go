package xregistry

import (
	"github.com/omeyang/sessionkit/pkg/pool/xpool"
)

// Registry 定义符号名到工厂的注册表接口。
// 所有方法并发安全。
type Registry interface {
	// Register 以 name 注册一个工厂。
	// name 为空返回 [ErrEmptyName]，f 为 nil 返回 [ErrNilFactory]，
	// 名字已存在返回 [ErrDuplicateFactory]。
	Register(name string, f xpool.Factory) error

	// Resolve 按名字解析工厂。
	// 精确匹配优先；未命中时把 name 当作命名空间，返回其下
	// 按字典序最小的注册项。区分两类失败：
	// [ErrFactoryNotFound]（名字有误）与 [ErrNamespaceEmpty]（无注册项）。
	Resolve(name string) (xpool.Factory, error)

	// Names 返回全部已注册名字，按字典序排序。
	Names() []string
}

// New 创建注册表。
func New(opts ...Option) (Registry, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	return newRegistry(o)
}
