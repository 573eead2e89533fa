package xguard

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_SucceedsFirstTry(t *testing.T) {
	var calls atomic.Int32
	err := Do(context.Background(), func(_ context.Context) error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_RetriesOnLockTimeout(t *testing.T) {
	var calls atomic.Int32
	err := Do(context.Background(), func(_ context.Context) error {
		if calls.Add(1) < 3 {
			return &TimeoutError{Scope: ScopeResource, Op: "open", Key: "chrome", Timeout: time.Millisecond}
		}
		return nil
	}, WithRetryDelay(time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	err := Do(context.Background(), func(_ context.Context) error {
		calls.Add(1)
		return ErrLockTimeout
	}, WithRetryAttempts(4), WithRetryDelay(time.Millisecond))
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.Equal(t, int32(4), calls.Load())
}

func TestDo_NonTimeoutErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	err := Do(context.Background(), func(_ context.Context) error {
		calls.Add(1)
		return ErrInvalidResourceKey
	}, WithRetryDelay(time.Millisecond))
	assert.ErrorIs(t, err, ErrInvalidResourceKey)
	assert.Equal(t, int32(1), calls.Load(), "only contention errors are worth retrying")
}

func TestDo_ContextCancelStopsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	err := Do(ctx, func(_ context.Context) error {
		if calls.Add(1) == 2 {
			cancel()
		}
		return ErrLockTimeout
	}, WithRetryAttempts(0), WithRetryDelay(time.Millisecond))
	require.Error(t, err)
	assert.LessOrEqual(t, calls.Load(), int32(3))
}

func TestDo_EndToEndWithManager(t *testing.T) {
	m := newTestManager(t, WithLockTimeout(30*time.Millisecond))

	g, err := m.Acquire(context.Background(), "open", "chrome")
	require.NoError(t, err)
	go func() {
		time.Sleep(60 * time.Millisecond)
		assert.NoError(t, g.Release())
	}()

	// 首次尝试超时，持有者释放后的重试成功
	err = Do(context.Background(), func(ctx context.Context) error {
		grant, acqErr := m.Acquire(ctx, "open", "chrome")
		if acqErr != nil {
			return acqErr
		}
		return grant.Release()
	}, WithRetryAttempts(5), WithRetryDelay(20*time.Millisecond))
	assert.NoError(t, err)
}
