package ttlcache

import (
	"log/slog"
	"time"
)

// The sweeper is the cache's background maintenance loop. It is started
// lazily by the first write, stops itself once the store drains, and is
// restarted by the next write, so an idle cache owns no goroutine.
//
// Lifecycle transitions (start, stop, reconfigure) are all guarded by
// c.mu. Sweep passes themselves run outside that mutex and are kept
// single-flight by the sweepBusy flag, which survives loop restarts: a
// reconfigure never interrupts an in-flight pass, and a tick that fires
// while a pass is still running is skipped outright rather than queued.

// startSweeperLocked spawns a new sweep loop. Caller must hold c.mu.
func (c *Cache[V]) startSweeperLocked() {
	stop := make(chan struct{})
	c.sweepStop = stop
	interval := c.interval

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.sweepLoop(stop, interval)
	}()
}

// restartSweeperLocked replaces the current loop with one using the
// updated interval, if a loop is running. Caller must hold c.mu.
func (c *Cache[V]) restartSweeperLocked() {
	if c.sweepStop == nil || c.closed {
		return
	}
	close(c.sweepStop)
	c.startSweeperLocked()
}

func (c *Cache[V]) sweepLoop(stop chan struct{}, interval time.Duration) {
	c.logger.Debug("cache maintenance started",
		slog.String("cache_id", c.id.String()),
		slog.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			c.logger.Debug("cache maintenance stopped",
				slog.String("cache_id", c.id.String()))
			return
		case <-ticker.C:
			c.sweepOnce()
		}
	}
}

// sweepOnce performs a single eviction pass: compute the staleness
// threshold, remove every entry written before it, and notify the
// expiration handlers for each removed entry.
func (c *Cache[V]) sweepOnce() {
	if !c.sweepBusy.CompareAndSwap(false, true) {
		c.logger.Debug("sweep still running, skipping tick",
			slog.String("cache_id", c.id.String()))
		return
	}
	defer c.sweepBusy.Store(false)

	c.mu.Lock()
	threshold := time.Now().Add(-c.expiration)
	c.mu.Unlock()

	removed := 0
	for _, key := range c.store.expiredKeys(threshold) {
		rec, ok := c.store.removeExpired(key, threshold)
		if !ok {
			// Refreshed or removed by somebody else since the snapshot.
			continue
		}
		removed++
		c.evictions.Add(1)
		c.notifyExpiration(key, rec.value)
	}

	if removed > 0 {
		c.logger.Debug("sweep evicted entries",
			slog.String("cache_id", c.id.String()),
			slog.Int("evicted", removed),
			slog.Int("remaining", c.store.len()))
	}

	if c.store.len() == 0 {
		c.stopSweeperOnEmpty()
	}
}

// stopSweeperOnEmpty shuts the loop down because the store drained, then
// re-checks under the lifecycle mutex: a write may have landed between
// the emptiness observation and the stop, in which case the loop is
// started again rather than leaving live entries unswept.
func (c *Cache[V]) stopSweeperOnEmpty() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sweepStop == nil {
		return
	}

	close(c.sweepStop)
	c.sweepStop = nil

	if c.store.len() > 0 && !c.closed {
		c.startSweeperLocked()
	}
}
