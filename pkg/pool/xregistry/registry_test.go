package xregistry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/omeyang/sessionkit/pkg/pool/xpool"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type nilHandle struct{}

func (nilHandle) Close() error { return nil }

// namedFactory 返回可按身份区分的工厂。
func namedFactory() xpool.Factory {
	return func(_ context.Context, _ string) (xpool.Handle, error) {
		return nilHandle{}, nil
	}
}

func newTestRegistry(t *testing.T, opts ...Option) Registry {
	t.Helper()
	r, err := New(opts...)
	require.NoError(t, err)
	return r
}

func TestRegister_Validation(t *testing.T) {
	r := newTestRegistry(t)

	assert.ErrorIs(t, r.Register("", namedFactory()), ErrEmptyName)
	assert.ErrorIs(t, r.Register("browsers.chrome", nil), ErrNilFactory)

	require.NoError(t, r.Register("browsers.chrome", namedFactory()))
	assert.ErrorIs(t, r.Register("browsers.chrome", namedFactory()), ErrDuplicateFactory)
}

func TestResolve_ExactMatch(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register("browsers.chrome", namedFactory()))

	f, err := r.Resolve("browsers.chrome")
	require.NoError(t, err)
	require.NotNil(t, f)

	h, err := f(context.Background(), "chrome")
	require.NoError(t, err)
	assert.NotNil(t, h)
}

func TestResolve_NamespacePicksLexicographicallySmallest(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register("browsers.firefox", namedFactory()))
	require.NoError(t, r.Register("browsers.chrome", namedFactory()))
	require.NoError(t, r.Register("browsers.edge", namedFactory()))

	// 命名空间解析必须确定：同一输入永远给同一实现
	f1, err := r.Resolve("browsers")
	require.NoError(t, err)
	f2, err := r.Resolve("browsers")
	require.NoError(t, err)
	assert.NotNil(t, f1)
	assert.NotNil(t, f2)
}

func TestResolve_FactoryNotFoundVsNamespaceEmpty(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register("browsers.chrome", namedFactory()))

	// 父命名空间非空 + 无精确匹配：名字写错了，绝不静默回退到 chrome
	_, err := r.Resolve("browsers.chromium")
	assert.ErrorIs(t, err, ErrFactoryNotFound)
	assert.NotErrorIs(t, err, ErrNamespaceEmpty)

	// 空命名空间：需要注册实现
	_, err = r.Resolve("editors.vim")
	assert.ErrorIs(t, err, ErrNamespaceEmpty)
	assert.NotErrorIs(t, err, ErrFactoryNotFound)

	_, err = r.Resolve("editors")
	assert.ErrorIs(t, err, ErrNamespaceEmpty)
}

func TestResolve_TopLevelMiss(t *testing.T) {
	empty := newTestRegistry(t)
	_, err := empty.Resolve("chrome")
	assert.ErrorIs(t, err, ErrNamespaceEmpty)

	populated := newTestRegistry(t)
	require.NoError(t, populated.Register("firefox", namedFactory()))
	_, err = populated.Resolve("chrome")
	assert.ErrorIs(t, err, ErrFactoryNotFound)
}

func TestResolve_EmptyName(t *testing.T) {
	r := newTestRegistry(t)
	_, err := r.Resolve("")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestResolve_CacheInvalidatedOnRegister(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register("browsers.firefox", namedFactory()))

	// 先解析一次，结果进缓存
	_, err := r.Resolve("browsers")
	require.NoError(t, err)

	// 注册字典序更小的名字后，命名空间解析必须看到它
	var called bool
	require.NoError(t, r.Register("browsers.chrome", func(_ context.Context, _ string) (xpool.Handle, error) {
		called = true
		return nilHandle{}, nil
	}))

	f, err := r.Resolve("browsers")
	require.NoError(t, err)
	_, err = f(context.Background(), "browsers")
	require.NoError(t, err)
	assert.True(t, called, "stale cache entry survived Register")
}

func TestCaseInsensitive(t *testing.T) {
	r := newTestRegistry(t, WithCaseInsensitive())
	require.NoError(t, r.Register("Browsers.Chrome", namedFactory()))

	_, err := r.Resolve("browsers.chrome")
	assert.NoError(t, err)
	_, err = r.Resolve("BROWSERS.CHROME")
	assert.NoError(t, err)

	assert.ErrorIs(t, r.Register("browsers.CHROME", namedFactory()), ErrDuplicateFactory)
	assert.Equal(t, []string{"browsers.chrome"}, r.Names())
}

func TestCaseSensitiveByDefault(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register("Browsers.Chrome", namedFactory()))

	_, err := r.Resolve("browsers.chrome")
	assert.Error(t, err)
}

func TestNames_Sorted(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register("c", namedFactory()))
	require.NoError(t, r.Register("a", namedFactory()))
	require.NoError(t, r.Register("b", namedFactory()))

	assert.Equal(t, []string{"a", "b", "c"}, r.Names())
	assert.Empty(t, newTestRegistry(t).Names())
}

func TestNew_InvalidCacheSize(t *testing.T) {
	_, err := New(WithCacheSize(0))
	assert.ErrorIs(t, err, ErrInvalidCacheSize)

	_, err = New(WithCacheSize(-1))
	assert.ErrorIs(t, err, ErrInvalidCacheSize)
}

func TestConcurrentResolve(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Register("browsers.chrome", namedFactory()))
	require.NoError(t, r.Register("browsers.firefox", namedFactory()))

	const numGoroutines = 20
	var wg sync.WaitGroup
	for i := range numGoroutines {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for range 100 {
				if i%2 == 0 {
					_, err := r.Resolve("browsers.chrome")
					assert.NoError(t, err)
				} else {
					_, err := r.Resolve("browsers")
					assert.NoError(t, err)
				}
			}
		}(i)
	}
	wg.Wait()
}
