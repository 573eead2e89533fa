package xpoolconf

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce 默认防抖时间，窗口内的多次变更只触发一次重载。
const DefaultDebounce = 100 * time.Millisecond

// WatchCallback 配置变更回调。
// 重载成功时 settings 为新配置且 err 为 nil；
// 重载或校验失败时 settings 为 nil，旧配置继续生效。
type WatchCallback func(settings *Settings, err error)

// WatchOption 定义监视器可选配置。
type WatchOption func(*watchOptions)

type watchOptions struct {
	debounce time.Duration
}

// WithDebounce 设置防抖时间。d <= 0 时取 [DefaultDebounce]。
func WithDebounce(d time.Duration) WatchOption {
	if d <= 0 {
		d = DefaultDebounce
	}
	return func(o *watchOptions) {
		o.debounce = d
	}
}

// Watcher 监视配置文件变更并自动重载。
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	callback WatchCallback
	debounce time.Duration
	ctx      context.Context
	cancel   context.CancelFunc

	mu      sync.Mutex
	running bool
	timer   *time.Timer
}

// Watch 创建配置文件监视器。
// 变更防抖后经 [Load] 重载并调用 callback；重载失败只回调不中断监视。
// 返回的 Watcher 需调用 StartAsync 开始监视、Stop 停止。
func Watch(path string, callback WatchCallback, opts ...WatchOption) (*Watcher, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if _, err := detectFormat(path); err != nil {
		return nil, err
	}

	o := watchOptions{debounce: DefaultDebounce}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWatchFailed, err)
	}

	// 监视所在目录而非文件本身：编辑器原子写入（写临时文件后
	// rename）会让直接监视文件丢失事件。
	dir := filepath.Dir(path)
	if err := fsWatcher.Add(dir); err != nil {
		closeErr := fsWatcher.Close()
		return nil, errors.Join(fmt.Errorf("%w: %w", ErrWatchFailed, err), closeErr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:     path,
		watcher:  fsWatcher,
		callback: callback,
		debounce: o.debounce,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// StartAsync 在后台 goroutine 中启动监视，立即返回。
// 重复调用是无操作。
func (w *Watcher) StartAsync() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.run()
}

// Stop 停止监视并释放文件监视器。重复调用是无操作。
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.cancel()
	w.running = false
	return w.watcher.Close()
}

func (w *Watcher) run() {
	filename := filepath.Base(w.path)

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event, filename)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.callback != nil {
				w.callback(nil, fmt.Errorf("%w: %w", ErrWatchFailed, err))
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event, filename string) {
	if filepath.Base(event.Name) != filename {
		return
	}
	// Write 直接修改；Create/Rename 覆盖原子写入模式
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		settings, err := Load(w.path)
		if w.callback == nil {
			return
		}
		if err != nil {
			w.callback(nil, err)
			return
		}
		w.callback(settings, nil)
	})
}
