package xregistry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/omeyang/sessionkit/pkg/pool/xpool"
)

// registryImpl 是 Registry 的默认实现。
//
// 注册表本体是 RWMutex 保护的静态 map，启动期写、运行期读。
// 命名空间解析需要整表扫描，结果按名字缓存在 LRU 中，
// Register 时整体失效（启动期写入极少，粗粒度失效足够）。
type registryImpl struct {
	opts options

	mu        sync.RWMutex
	factories map[string]xpool.Factory

	cache *lru.Cache[string, xpool.Factory]
}

var _ Registry = (*registryImpl)(nil)

func newRegistry(o options) (*registryImpl, error) {
	cache, err := lru.New[string, xpool.Factory](o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCacheSize, err)
	}
	return &registryImpl{
		opts:      o,
		factories: make(map[string]xpool.Factory),
		cache:     cache,
	}, nil
}

// fold 按配置折叠名字大小写。
func (r *registryImpl) fold(name string) string {
	if r.opts.caseInsensitive {
		return strings.ToLower(name)
	}
	return name
}

func (r *registryImpl) Register(name string, f xpool.Factory) error {
	if name == "" {
		return ErrEmptyName
	}
	if f == nil {
		return fmt.Errorf("%w: %q", ErrNilFactory, name)
	}
	name = r.fold(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateFactory, name)
	}
	r.factories[name] = f
	// 新注册项可能改变既有名字的命名空间解析结果，整体失效。
	r.cache.Purge()
	return nil
}

func (r *registryImpl) Resolve(name string) (xpool.Factory, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	name = r.fold(name)

	if f, ok := r.cache.Get(name); ok {
		return f, nil
	}

	r.mu.RLock()
	f, err := r.resolveLocked(name)
	r.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	r.cache.Add(name, f)
	return f, nil
}

// resolveLocked 执行实际解析，调用方持有读锁。
func (r *registryImpl) resolveLocked(name string) (xpool.Factory, error) {
	// 1. 精确匹配
	if f, ok := r.factories[name]; ok {
		return f, nil
	}

	// 2. 命名空间解析：name 下按字典序最小的注册项
	if best := r.smallestUnder(name + "."); best != "" {
		return r.factories[best], nil
	}

	// 3. 无命中：按父命名空间是否为空区分错误类型。
	//    父空间有注册项说明调用方给的是写错的完全限定名；
	//    父空间为空说明该命名空间确实没有实现。
	if r.parentPopulated(name) {
		return nil, fmt.Errorf("%w: %q", ErrFactoryNotFound, name)
	}
	return nil, fmt.Errorf("%w: %q", ErrNamespaceEmpty, name)
}

// smallestUnder 返回带 prefix 前缀的注册名中字典序最小者，无则空串。
func (r *registryImpl) smallestUnder(prefix string) string {
	best := ""
	for n := range r.factories {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		if best == "" || n < best {
			best = n
		}
	}
	return best
}

// parentPopulated 报告 name 的父命名空间是否含注册项。
// 顶层名字的父命名空间是整个注册表。
func (r *registryImpl) parentPopulated(name string) bool {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return len(r.factories) > 0
	}
	parent := name[:idx]
	if _, ok := r.factories[parent]; ok {
		return true
	}
	return r.smallestUnder(parent+".") != ""
}

func (r *registryImpl) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
