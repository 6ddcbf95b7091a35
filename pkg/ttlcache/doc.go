// Package ttlcache provides a generic, thread-safe, in-memory cache
// whose entries expire a fixed duration after their last write.
//
// The cache is a building block for memoizing expensive computations or
// holding short-lived state in process, without an external cache
// server. Expiration is driven by writes, not reads: every Set stamps
// the entry with the current time, reads never renew it, and a
// background sweep periodically evicts entries older than the cache's
// TTL.
//
// # Key Features
//
//   - Generic values with plain string keys
//   - One global TTL and sweep interval per cache instance, both
//     adjustable at runtime
//   - Lazily started maintenance: the sweeper goroutine exists only
//     while the cache holds entries
//   - Expiration notifications with per-handler panic isolation
//   - Optional per-key synchronized construction (GetOrSyncAdd) backed
//     by a named-lock registry
//   - Advisory hit/miss/eviction counters
//
// # Usage
//
// Create a cache, work with it, and close it when done:
//
//	c := ttlcache.New[string](
//		ttlcache.WithExpiration(5*time.Minute),
//		ttlcache.WithMaintenanceInterval(30*time.Second),
//	)
//	defer c.Close()
//
//	if err := c.Set("greeting", "hello"); err != nil {
//		// empty key or zero value
//	}
//
//	value, ok := c.Get("greeting") // "hello", true
//	removed, ok := c.Remove("greeting")
//
// Absence is never an error: Get and Remove return the zero value of V
// and false for missing keys, and an entry that expired is simply
// missing.
//
// # Memoization
//
// GetOrAdd fills a missing key from a factory function:
//
//	report, err := c.GetOrAdd("report:2024-01", func(key string) string {
//		return buildReport(key) // invoked only when the key is absent
//	})
//
// GetOrAdd performs no cross-goroutine coordination: concurrent callers
// racing on the same missing key each run the factory, and the last
// write wins. When the factory is expensive enough that it must run at
// most once, GetOrSyncAdd serializes construction through a per-key
// lock:
//
//	report, err := c.GetOrSyncAdd("report:2024-01", buildReport, time.Second)
//
// A caller that cannot win the lock within the wait budget receives the
// zero value of V with a nil error instead of blocking further. That
// zero value is indistinguishable from a factory that legitimately
// produced one, which is why Set rejects zero values in the first place.
//
// # Expiration Notifications
//
// Handlers observe entries the sweeper evicts:
//
//	unsubscribe := c.OnExpiration(func(key string, sess Session) {
//		sess.Flush()
//	})
//	defer unsubscribe()
//
// Handlers run synchronously on the sweeper goroutine. Each handler is
// invoked under its own panic recovery, so one misbehaving handler
// cannot stop the sweep, the other handlers, or future maintenance
// ticks. Entries removed via Remove or Clear do not notify; only
// TTL-driven eviction does.
//
// # Maintenance Lifecycle
//
// The sweeper starts with the first successful Set, ticks every
// MaintenanceInterval, and stops itself once it observes an empty
// store, restarting on the next write. Eviction timing is therefore
// approximate: an entry becomes eligible after Expiration and is
// removed by the next sweep that sees it, and a stale-but-unswept entry
// is still returned by Get. Changing Expiration or MaintenanceInterval
// at runtime replaces the timer; an in-flight sweep pass finishes
// undisturbed.
//
// Close stops the sweeper deterministically and waits for an in-flight
// pass, making the cache safe to use in tests and embedded contexts
// without leaking goroutines. Reads continue to work after Close;
// writes fail with ErrClosed.
package ttlcache
