package xpoolconf

import "errors"

var (
	// ErrEmptyPath 表示配置文件路径为空。
	ErrEmptyPath = errors.New("xpoolconf: empty config path")

	// ErrUnsupportedFormat 表示不支持的配置格式。
	ErrUnsupportedFormat = errors.New("xpoolconf: unsupported config format")

	// ErrLoadFailed 表示配置文件读取失败。
	ErrLoadFailed = errors.New("xpoolconf: failed to load config")

	// ErrParseFailed 表示配置解析失败。
	ErrParseFailed = errors.New("xpoolconf: failed to parse config")

	// ErrInvalidSettings 表示配置值未通过校验。
	ErrInvalidSettings = errors.New("xpoolconf: invalid settings")

	// ErrWatchFailed 表示文件监视器创建失败。
	ErrWatchFailed = errors.New("xpoolconf: failed to watch config")
)
