package lock

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLocal_SerializesSameKey(t *testing.T) {
	locker := NewLocal()
	ctx := context.Background()

	var active, maxActive int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(ctx, MaLoDraftKey("1"))
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			n := atomic.AddInt32(&active, 1)
			for {
				m := atomic.LoadInt32(&maxActive)
				if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
	assert.Empty(t, locker.locks)
}

func TestLocal_DifferentKeysDoNotBlock(t *testing.T) {
	locker := NewLocal()
	ctx := context.Background()

	releaseA, err := locker.Acquire(ctx, "a")
	require.NoError(t, err)
	defer releaseA()

	releaseB, err := locker.Acquire(ctx, "b")
	require.NoError(t, err)
	releaseB()
}

func TestLocal_ContextCancel(t *testing.T) {
	locker := NewLocal()

	release, err := locker.Acquire(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = locker.Acquire(ctx, "a")
	assert.ErrorIs(t, err, ErrNotAcquired)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()
	release()

	again, err := locker.Acquire(context.Background(), "a")
	require.NoError(t, err)
	again()
}

func TestRedis_NotConfigured(t *testing.T) {
	var locker *Redis
	_, ok, err := locker.TryLock(context.Background(), "a")
	assert.False(t, ok)
	assert.Error(t, err)
	assert.NoError(t, locker.Release(context.Background(), "a", "token"))
}

func TestRedis_AcquireRelease(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	locker := NewRedis(client, time.Second, zaptest.NewLogger(t))

	key := MaLoDraftKey(t.Name())
	release, err := locker.Acquire(context.Background(), key)
	require.NoError(t, err)

	_, ok, err := locker.TryLock(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, ok)

	release()
	token, ok, err := locker.TryLock(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, locker.Release(context.Background(), key, token))
}
