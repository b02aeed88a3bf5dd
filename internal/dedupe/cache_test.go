package dedupe_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/metrix-hq/metrix/web/internal/dedupe"
)

func TestCacheSeenDuplicate(t *testing.T) {
	cache := dedupe.NewCache(10, time.Minute)
	require.False(t, cache.IsSeen("fan@example.com"))
	cache.MarkSeen("fan@example.com")
	require.True(t, cache.IsSeen("fan@example.com"))
}

func TestCacheTTLExpiry(t *testing.T) {
	cache := dedupe.NewCache(10, 20*time.Millisecond)
	require.False(t, cache.Observe("beta"))
	time.Sleep(25 * time.Millisecond)
	require.False(t, cache.IsSeen("beta"))
	require.False(t, cache.Observe("beta"))
}

func TestCacheCapacityEvictsOldest(t *testing.T) {
	cache := dedupe.NewCache(1, time.Minute)
	require.False(t, cache.Observe("first"))
	require.False(t, cache.Observe("second"))

	require.False(t, cache.IsSeen("first"))
	require.True(t, cache.IsSeen("second"))
}

func TestCacheForget(t *testing.T) {
	cache := dedupe.NewCache(10, time.Minute)
	require.False(t, cache.Observe("gamma"))
	require.True(t, cache.Observe("gamma"))
	cache.Forget("gamma")
	require.False(t, cache.Observe("gamma"))
}

func TestCacheObserveConcurrent(t *testing.T) {
	cache := dedupe.NewCache(100, time.Minute)
	var fresh atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !cache.Observe("same@example.com") {
				fresh.Add(1)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), fresh.Load())
}
