package ttlcache_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cachekit/pkg/ttlcache"
)

type eviction struct {
	key   string
	value string
}

// newEvictionChannel registers an expiration handler that forwards every
// eviction into a buffered channel the test can wait on.
func newEvictionChannel(c *ttlcache.Cache[string]) <-chan eviction {
	ch := make(chan eviction, 64)
	c.OnExpiration(func(key, value string) {
		ch <- eviction{key: key, value: value}
	})
	return ch
}

func waitForEviction(t *testing.T, ch <-chan eviction) eviction {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for eviction")
		return eviction{}
	}
}

func TestCache_EvictsExpiredEntries(t *testing.T) {
	c := ttlcache.New[string](
		ttlcache.WithExpiration(60*time.Millisecond),
		ttlcache.WithMaintenanceInterval(20*time.Millisecond),
	)
	defer c.Close()

	evicted := newEvictionChannel(c)

	require.NoError(t, c.Set("session", "token"))

	ev := waitForEviction(t, evicted)
	assert.Equal(t, "session", ev.key)
	assert.Equal(t, "token", ev.value)

	_, ok := c.Get("session")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Evictions)
	assert.Equal(t, 0, stats.Entries)
}

func TestCache_NotifiesOncePerEviction(t *testing.T) {
	c := ttlcache.New[string](
		ttlcache.WithExpiration(50*time.Millisecond),
		ttlcache.WithMaintenanceInterval(20*time.Millisecond),
	)
	defer c.Close()

	evicted := newEvictionChannel(c)

	keys := []string{"a", "b", "c"}
	for _, key := range keys {
		require.NoError(t, c.Set(key, "value:"+key))
	}

	seen := make(map[string]int)
	for range keys {
		ev := waitForEviction(t, evicted)
		seen[ev.key]++
		assert.Equal(t, "value:"+ev.key, ev.value)
	}

	// No straggler notifications after every key was reported once.
	time.Sleep(150 * time.Millisecond)
	select {
	case ev := <-evicted:
		t.Fatalf("unexpected extra notification for %q", ev.key)
	default:
	}

	for _, key := range keys {
		assert.Equal(t, 1, seen[key], "key %q must be reported exactly once", key)
	}
}

func TestCache_WriteRefreshesLifetime(t *testing.T) {
	c := ttlcache.New[string](
		ttlcache.WithExpiration(100*time.Millisecond),
		ttlcache.WithMaintenanceInterval(25*time.Millisecond),
	)
	defer c.Close()

	evicted := newEvictionChannel(c)

	require.NoError(t, c.Set("lease", "held"))

	// Keep rewriting well past the original deadline. Each write stamps a
	// fresh lifetime, so the entry must outlive several sweep passes.
	for range 10 {
		time.Sleep(30 * time.Millisecond)
		require.NoError(t, c.Set("lease", "held"))
	}

	value, ok := c.Get("lease")
	require.True(t, ok)
	assert.Equal(t, "held", value)

	select {
	case ev := <-evicted:
		t.Fatalf("entry %q evicted while being refreshed", ev.key)
	default:
	}

	// Stop refreshing and the regular deadline applies again.
	ev := waitForEviction(t, evicted)
	assert.Equal(t, "lease", ev.key)
}

func TestCache_ReadsDoNotRefreshLifetime(t *testing.T) {
	c := ttlcache.New[string](
		ttlcache.WithExpiration(80*time.Millisecond),
		ttlcache.WithMaintenanceInterval(20*time.Millisecond),
	)
	defer c.Close()

	evicted := newEvictionChannel(c)

	require.NoError(t, c.Set("page", "content"))

	// Read continuously; the entry must still age out on schedule.
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(2 * time.Second)

	for {
		select {
		case ev := <-evicted:
			assert.Equal(t, "page", ev.key)
			_, ok := c.Get("page")
			assert.False(t, ok)
			return
		case <-ticker.C:
			c.Get("page")
		case <-deadline:
			t.Fatal("entry was never evicted despite read-only access")
		}
	}
}

func TestCache_StaleEntriesVisibleUntilSwept(t *testing.T) {
	// An interval far beyond the test's lifetime means no sweep ever runs,
	// so entries older than the expiration stay readable.
	c := ttlcache.New[string](
		ttlcache.WithExpiration(30*time.Millisecond),
		ttlcache.WithMaintenanceInterval(time.Hour),
	)
	defer c.Close()

	require.NoError(t, c.Set("stale", "still-here"))
	time.Sleep(100 * time.Millisecond)

	value, ok := c.Get("stale")
	assert.True(t, ok)
	assert.Equal(t, "still-here", value)
	assert.Equal(t, 1, c.Count())
}

func TestCache_MaintenanceLifecycle(t *testing.T) {
	t.Run("restarts after draining", func(t *testing.T) {
		c := ttlcache.New[string](
			ttlcache.WithExpiration(40*time.Millisecond),
			ttlcache.WithMaintenanceInterval(15*time.Millisecond),
		)
		defer c.Close()

		evicted := newEvictionChannel(c)

		// First generation: evict, observe, confirm the store drained.
		require.NoError(t, c.Set("first", "value"))
		assert.Equal(t, "first", waitForEviction(t, evicted).key)

		// Give the loop a moment to notice the empty store and park.
		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, 0, c.Count())

		// Second generation: a fresh write must bring maintenance back.
		require.NoError(t, c.Set("second", "value"))
		assert.Equal(t, "second", waitForEviction(t, evicted).key)
	})

	t.Run("clear drains without notifications", func(t *testing.T) {
		c := ttlcache.New[string](
			ttlcache.WithExpiration(50*time.Millisecond),
			ttlcache.WithMaintenanceInterval(15*time.Millisecond),
		)
		defer c.Close()

		evicted := newEvictionChannel(c)

		require.NoError(t, c.Set("a", "1"))
		require.NoError(t, c.Set("b", "2"))
		c.Clear()
		require.Equal(t, 0, c.Count())

		// Cleared entries were removed deliberately, not expired, so no
		// handler fires for them.
		time.Sleep(150 * time.Millisecond)
		select {
		case ev := <-evicted:
			t.Fatalf("unexpected notification for cleared key %q", ev.key)
		default:
		}

		// Maintenance still comes back for later writes.
		require.NoError(t, c.Set("after", "value"))
		assert.Equal(t, "after", waitForEviction(t, evicted).key)
	})

	t.Run("interval change takes effect on a running sweeper", func(t *testing.T) {
		// Start with an interval so long the first pass would never run
		// inside the test, then tighten it.
		c := ttlcache.New[string](
			ttlcache.WithExpiration(30*time.Millisecond),
			ttlcache.WithMaintenanceInterval(time.Hour),
		)
		defer c.Close()

		evicted := newEvictionChannel(c)

		require.NoError(t, c.Set("key", "value"))
		time.Sleep(60 * time.Millisecond)
		require.Equal(t, 1, c.Count())

		c.SetMaintenanceInterval(20 * time.Millisecond)

		assert.Equal(t, "key", waitForEviction(t, evicted).key)
	})

	t.Run("expiration change applies to existing entries", func(t *testing.T) {
		c := ttlcache.New[string](
			ttlcache.WithExpiration(time.Hour),
			ttlcache.WithMaintenanceInterval(20*time.Millisecond),
		)
		defer c.Close()

		evicted := newEvictionChannel(c)

		require.NoError(t, c.Set("key", "value"))
		time.Sleep(100 * time.Millisecond)
		require.Equal(t, 1, c.Count())

		// Shrinking the deadline below the entry's current age makes the
		// next pass evict it; timestamps are never re-stamped.
		c.SetExpiration(50 * time.Millisecond)

		assert.Equal(t, "key", waitForEviction(t, evicted).key)
	})

	t.Run("repeated writes keep a single maintenance loop", func(t *testing.T) {
		c := ttlcache.New[string](
			ttlcache.WithExpiration(time.Millisecond),
			ttlcache.WithMaintenanceInterval(50*time.Millisecond),
		)
		defer c.Close()

		// The handler re-adds the heartbeat key, so every pass evicts it
		// exactly once and the notification count equals the pass count.
		var passes atomic.Int32
		unsubscribe := c.OnExpiration(func(key, _ string) {
			if key != "heartbeat" {
				return
			}
			passes.Add(1)
			_ = c.Set(key, "again")
		})

		require.NoError(t, c.Set("heartbeat", "start"))
		for range 5 {
			// Writes while the loop runs must not spawn another one.
			require.NoError(t, c.Set("extra", "value"))
		}

		time.Sleep(320 * time.Millisecond)
		unsubscribe()

		// One loop ticking every 50ms fits at most ~7 passes into the
		// window; a duplicated loop would roughly double that.
		count := passes.Load()
		assert.GreaterOrEqual(t, count, int32(3))
		assert.LessOrEqual(t, count, int32(8))
	})

	t.Run("close stops maintenance", func(t *testing.T) {
		c := ttlcache.New[string](
			ttlcache.WithExpiration(40*time.Millisecond),
			ttlcache.WithMaintenanceInterval(15*time.Millisecond),
		)

		evicted := newEvictionChannel(c)

		require.NoError(t, c.Set("key", "value"))
		require.NoError(t, c.Close())

		// Well past the deadline, the entry survives because nothing
		// sweeps a closed cache.
		time.Sleep(150 * time.Millisecond)

		value, ok := c.Get("key")
		assert.True(t, ok)
		assert.Equal(t, "value", value)

		select {
		case ev := <-evicted:
			t.Fatalf("eviction of %q after close", ev.key)
		default:
		}
	})
}

func TestCache_OnExpiration(t *testing.T) {
	t.Run("nil handler panics", func(t *testing.T) {
		c := ttlcache.New[string]()
		defer c.Close()

		assert.Panics(t, func() { c.OnExpiration(nil) })
	})

	t.Run("unsubscribed handler is not called", func(t *testing.T) {
		c := ttlcache.New[string](
			ttlcache.WithExpiration(40*time.Millisecond),
			ttlcache.WithMaintenanceInterval(15*time.Millisecond),
		)
		defer c.Close()

		var muted atomic.Int32
		unsubscribe := c.OnExpiration(func(string, string) {
			muted.Add(1)
		})
		unsubscribe()

		evicted := newEvictionChannel(c)

		require.NoError(t, c.Set("key", "value"))
		waitForEviction(t, evicted)

		assert.Equal(t, int32(0), muted.Load())
	})

	t.Run("panicking handler does not starve the others", func(t *testing.T) {
		c := ttlcache.New[string](
			ttlcache.WithExpiration(40*time.Millisecond),
			ttlcache.WithMaintenanceInterval(15*time.Millisecond),
		)
		defer c.Close()

		c.OnExpiration(func(key, _ string) {
			panic("handler failure: " + key)
		})
		evicted := newEvictionChannel(c)

		require.NoError(t, c.Set("key", "value"))

		ev := waitForEviction(t, evicted)
		assert.Equal(t, "key", ev.key)

		// The cache itself must shrug the panic off.
		require.NoError(t, c.Set("next", "value"))
		assert.Equal(t, "next", waitForEviction(t, evicted).key)
	})

	t.Run("handler may write back into the cache", func(t *testing.T) {
		c := ttlcache.New[string](
			ttlcache.WithExpiration(40*time.Millisecond),
			ttlcache.WithMaintenanceInterval(15*time.Millisecond),
		)
		defer c.Close()

		evicted := newEvictionChannel(c)
		c.OnExpiration(func(key, value string) {
			// Re-add the first generation only, so the test terminates.
			if value == "v1" {
				_ = c.Set(key, "v2")
			}
		})

		require.NoError(t, c.Set("refresh-me", "v1"))

		// First pass evicts the original, the handler writes v2 back, and
		// the second pass evicting v2 proves the write-back landed and
		// aged out like any regular entry.
		first := waitForEviction(t, evicted)
		assert.Equal(t, "refresh-me", first.key)
		assert.Equal(t, "v1", first.value)

		second := waitForEviction(t, evicted)
		assert.Equal(t, "refresh-me", second.key)
		assert.Equal(t, "v2", second.value)
	})
}
