package ttlcache

import (
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/cachekit/pkg/namedlock"
)

// Cache is a generic, thread-safe, write-TTL cache. Entries expire a
// fixed duration after their last write and are evicted by a lazily
// started background sweep; reads never renew an entry's lifetime.
//
// The zero value is not usable; construct instances with New or
// NewFromConfig and release the background goroutine with Close.
type Cache[V any] struct {
	id     uuid.UUID
	store  *store[V]
	locks  *namedlock.Registry
	logger *slog.Logger

	// mu guards the sweeper lifecycle and the two durations. It is
	// acquired after nothing and held only across map-sized work, so
	// cache operations never block behind a sweep pass.
	mu         sync.Mutex
	expiration time.Duration
	interval   time.Duration
	sweepStop  chan struct{}
	closed     bool

	wg        sync.WaitGroup
	sweepBusy atomic.Bool

	listenerMu   sync.RWMutex
	listeners    map[int]func(key string, value V)
	nextListener int

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// Stats is an advisory snapshot of cache activity. Counters are updated
// atomically but the snapshot itself is not point-in-time consistent
// under concurrent mutation.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
}

// New creates a cache for values of type V. The background sweeper is
// not started until the first write.
func New[V any](opts ...Option) *Cache[V] {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = newNoopLogger()
	}
	if cfg.locks == nil {
		cfg.locks = namedlock.New()
	}

	return &Cache[V]{
		id:         uuid.New(),
		store:      newStore[V](),
		locks:      cfg.locks,
		logger:     cfg.logger,
		expiration: cfg.expiration,
		interval:   cfg.interval,
		listeners:  make(map[int]func(string, V)),
	}
}

// Get returns the value stored under key. Absent keys are not an error:
// the zero value of V and false are returned instead. Get does not
// refresh the entry's TTL and does not filter entries that are stale but
// not yet swept.
func (c *Cache[V]) Get(key string) (V, bool) {
	rec, ok := c.store.get(key)
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}

	c.hits.Add(1)
	return rec.value, true
}

// Set stores value under key with the write timestamp set to now,
// overwriting any previous entry (last write wins), and ensures the
// background sweeper is running.
//
// The key must be non-empty and the value must not be the zero value of
// V: Get reports absent keys with the zero value, so a stored zero value
// would be indistinguishable from a miss.
func (c *Cache[V]) Set(key string, value V) error {
	if key == "" {
		return ErrEmptyKey
	}
	if isZero(value) {
		return ErrZeroValue
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.store.set(key, record[V]{value: value, updatedAt: time.Now()})
	if c.sweepStop == nil {
		c.startSweeperLocked()
	}
	return nil
}

// Remove atomically takes the entry for key out of the cache and returns
// its value, or the zero value and false if the key is absent.
func (c *Cache[V]) Remove(key string) (V, bool) {
	rec, ok := c.store.remove(key)
	if !ok {
		var zero V
		return zero, false
	}
	return rec.value, true
}

// Clear removes every entry. The sweeper is left running; it stops
// itself on its next tick once it observes the empty store.
func (c *Cache[V]) Clear() {
	c.store.clear()
}

// Count returns the current number of entries. Under concurrent mutation
// the value is advisory, not a point-in-time consistent count.
func (c *Cache[V]) Count() int {
	return c.store.len()
}

// GetOrAdd returns the value stored under key, or invokes factory to
// produce one, stores it via Set and returns it.
//
// GetOrAdd offers no cross-goroutine exclusivity: concurrent callers
// racing on the same missing key each invoke factory and the last write
// wins. That keeps the common path free of locking; use GetOrSyncAdd
// when the factory must run at most once per missing key.
func (c *Cache[V]) GetOrAdd(key string, factory func(key string) V) (V, error) {
	var zero V
	if key == "" {
		return zero, ErrEmptyKey
	}
	if factory == nil {
		return zero, ErrNilFactory
	}

	if value, ok := c.Get(key); ok {
		return value, nil
	}

	value := factory(key)
	if err := c.Set(key, value); err != nil {
		return zero, err
	}
	return value, nil
}

// GetOrSyncAdd behaves like GetOrAdd but serializes construction of the
// same missing key: callers that miss acquire a per-key named lock,
// bounded by waitTimeout, and re-check presence once the lock is won, so
// among the lock winners the factory runs at most once.
//
// When the lock is not acquired within waitTimeout the zero value of V
// is returned with a nil error. Degrading beats blocking here, and the
// result is deliberately indistinguishable from a factory that produced
// the zero value; callers needing the distinction should use GetOrAdd
// with their own coordination.
func (c *Cache[V]) GetOrSyncAdd(key string, factory func(key string) V, waitTimeout time.Duration) (V, error) {
	var zero V
	if key == "" {
		return zero, ErrEmptyKey
	}
	if factory == nil {
		return zero, ErrNilFactory
	}

	// Fast path: present keys are returned without touching the lock.
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	lock, err := c.locks.AcquireTimeout(key, waitTimeout)
	if err != nil {
		c.logger.Debug("per-key lock not acquired, returning zero value",
			slog.String("cache_id", c.id.String()),
			slog.String("key", key),
			slog.Duration("wait_timeout", waitTimeout))
		return zero, nil
	}
	defer lock.Release()

	return c.GetOrAdd(key, factory)
}

// Expiration returns the TTL applied to entries at sweep time.
func (c *Cache[V]) Expiration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expiration
}

// SetExpiration changes the TTL. The new value affects future sweep
// decisions only; entries are never retroactively re-stamped. A running
// sweeper is restarted, leaving any in-flight pass to finish.
func (c *Cache[V]) SetExpiration(d time.Duration) {
	if d <= 0 {
		panic("ttlcache: SetExpiration: duration must be > 0")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.expiration = d
	c.restartSweeperLocked()
}

// MaintenanceInterval returns the period between background sweeps.
func (c *Cache[V]) MaintenanceInterval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// SetMaintenanceInterval changes the sweep period, tearing down and
// restarting the sweeper when it is running.
func (c *Cache[V]) SetMaintenanceInterval(d time.Duration) {
	if d <= 0 {
		panic("ttlcache: SetMaintenanceInterval: duration must be > 0")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.interval = d
	c.restartSweeperLocked()
}

// Stats returns a snapshot of the cache's activity counters.
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Entries:   c.store.len(),
	}
}

// Close stops the background sweeper and waits for any in-flight pass to
// finish. After Close the cache rejects writes with ErrClosed; reads
// keep working against the remaining entries. Close is safe to call more
// than once.
func (c *Cache[V]) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true

	stop := c.sweepStop
	c.sweepStop = nil
	c.mu.Unlock()

	// Signal outside the mutex: the sweep goroutine takes c.mu on its
	// empty-store path and must not deadlock against Close.
	if stop != nil {
		close(stop)
	}
	c.wg.Wait()
	return nil
}

// isZero reports whether v is the zero value of its type, including
// typed and untyped nils.
func isZero[V any](v V) bool {
	return reflect.ValueOf(&v).Elem().IsZero()
}
