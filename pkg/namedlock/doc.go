// Package namedlock provides mutexes keyed by arbitrary strings, with
// bounded-timeout acquisition and automatic cleanup of unused entries.
//
// A named lock serializes work on a logical resource identified by a
// string (a cache key, a user ID, a file path) without requiring the
// callers to share anything beyond the Registry and the name.
//
// Basic usage:
//
//	registry := namedlock.New()
//
//	lock, err := registry.AcquireTimeout("user:42", time.Second)
//	if err != nil {
//		// Lock was not acquired within the timeout; degrade gracefully.
//		return
//	}
//	defer lock.Release()
//
//	// Exclusive section for "user:42". Other names proceed in parallel.
//
// Acquisition is context-aware, so callers that already carry a deadline
// can use Acquire directly:
//
//	lock, err := registry.Acquire(ctx, "report:2024-01")
//
// Entries are reference-counted: a name occupies registry memory only
// while at least one goroutine holds or waits for its lock, so churning
// through millions of distinct names is safe.
//
// Release is idempotent. Waiters for the same name are served in FIFO
// order.
package namedlock
