package xpool

import "errors"

var (
	// ErrClosed 表示池已关闭。
	// Close 后调用 GetOrCreate/Remove 返回此错误。
	ErrClosed = errors.New("xpool: closed")

	// ErrEmptyKey 表示资源 key 为空字符串。
	ErrEmptyKey = errors.New("xpool: empty resource key")

	// ErrNilFactory 表示工厂函数为 nil。
	ErrNilFactory = errors.New("xpool: nil factory")

	// ErrConstruction 表示工厂构建句柄失败。
	// 包装工厂返回的原始错误，条目不会入池，下次调用重新构建。
	ErrConstruction = errors.New("xpool: construction failed")

	// ErrTeardown 表示句柄拆除（Close）失败。
	// Remove 返回此错误；RemoveAll 中只记日志计数，不向上传播。
	ErrTeardown = errors.New("xpool: teardown failed")

	// ErrInvalidConfig 表示配置无效（如负的超时时长）。
	ErrInvalidConfig = errors.New("xpool: invalid config")
)
