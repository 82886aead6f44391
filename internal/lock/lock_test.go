package lock

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videosplus/storefront/internal/config"
)

func TestNoopAcquire(t *testing.T) {
	release, err := Noop{}.Acquire(context.Background(), "doc")
	require.NoError(t, err)
	release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Noop{}.Acquire(ctx, "doc")
	assert.ErrorIs(t, err, context.Canceled)
}

// Needs a live Redis, e.g. REDIS_TEST_URL=redis://localhost:6379/15
func TestRedisLocker(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	rdb, err := NewRedisClient(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	locker := NewRedisLocker(rdb, config.LockConfig{TTL: 5 * time.Second, WaitTimeout: 200 * time.Millisecond}, nil)
	key := "test-" + t.Name()

	t.Run("second acquire times out while held", func(t *testing.T) {
		release, err := locker.Acquire(context.Background(), key)
		require.NoError(t, err)

		_, err = locker.Acquire(context.Background(), key)
		assert.ErrorIs(t, err, ErrTimeout)

		release()
		again, err := locker.Acquire(context.Background(), key)
		require.NoError(t, err)
		again()
	})

	t.Run("holders never overlap", func(t *testing.T) {
		wide := NewRedisLocker(rdb, config.LockConfig{TTL: 5 * time.Second, WaitTimeout: 5 * time.Second}, nil)
		var (
			mu      sync.Mutex
			holders int
			maxSeen int
			wg      sync.WaitGroup
		)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				release, err := wide.Acquire(context.Background(), key)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				holders++
				if holders > maxSeen {
					maxSeen = holders
				}
				mu.Unlock()
				time.Sleep(10 * time.Millisecond)
				mu.Lock()
				holders--
				mu.Unlock()
				release()
			}()
		}
		wg.Wait()
		assert.Equal(t, 1, maxSeen)
	})
}
