// Package cachekit is a toolkit for in-process caching in Go services.
//
// The toolkit is built around a generic TTL cache with background
// maintenance and grows outward into the pieces services typically need
// alongside it: per-key synchronization, HTTP response caching, and
// configuration plumbing.
//
// Key Features:
//
//   - Generic, thread-safe TTL cache with write-based expiration
//   - Lazily started, self-stopping background eviction
//   - Expiration notifications with isolated handlers
//   - Per-key memoization with bounded lock waits
//   - Router-agnostic HTTP response caching middleware
//
// Packages:
//
//   - pkg/ttlcache: the core cache. Entries expire a fixed duration
//     after their last write and are evicted by a background sweep.
//   - pkg/namedlock: string-keyed mutual exclusion with context-aware,
//     bounded acquisition. Used by ttlcache for single-flight
//     memoization and usable on its own.
//   - pkg/httpcache: middleware that memoizes GET/HEAD responses in a
//     ttlcache, with optional request coalescing.
//   - pkg/settings: a YAML-file-backed store for runtime-tunable
//     settings with typed, fallback-based reads.
//   - pkg/config: env-based typed configuration loading with .env
//     bootstrapping and per-type caching.
//
// Basic Usage:
//
//	cache := ttlcache.New[User](
//		ttlcache.WithExpiration(10*time.Minute),
//		ttlcache.WithMaintenanceInterval(time.Minute),
//	)
//	defer cache.Close()
//
//	if err := cache.Set("user:42", user); err != nil {
//		return err
//	}
//
//	if user, ok := cache.Get("user:42"); ok {
//		// cached
//	}
//
// Expensive lookups memoize through the cache, with concurrent callers
// for the same key collapsed into a single computation:
//
//	user, err := cache.GetOrSyncAdd("user:42", func(key string) User {
//		return loadUserFromDB(key)
//	}, 2*time.Second)
//
// The toolkit follows these principles:
//   - Absence is not an error; errors mean invalid input or a closed cache
//   - No background work for idle caches
//   - Explicit lifecycles over finalizers
package cachekit
