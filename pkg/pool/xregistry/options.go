package xregistry

import "fmt"

// DefaultCacheSize 解析缓存的默认容量。
const DefaultCacheSize = 128

// Option 定义注册表可选配置函数类型。
type Option func(*options)

type options struct {
	cacheSize       int
	caseInsensitive bool
}

func defaultOptions() options {
	return options{
		cacheSize: DefaultCacheSize,
	}
}

// WithCacheSize 设置解析缓存容量，必须大于 0。
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// WithCaseInsensitive 开启大小写不敏感匹配。
// 注册与解析时名字均折叠为小写。
func WithCaseInsensitive() Option {
	return func(o *options) {
		o.caseInsensitive = true
	}
}

func (o *options) validate() error {
	if o.cacheSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCacheSize, o.cacheSize)
	}
	return nil
}
