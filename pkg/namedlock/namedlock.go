package namedlock

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Registry hands out process-wide mutexes keyed by arbitrary strings.
// Locks for different names never block each other; locks for the same
// name are mutually exclusive. Entries are reference-counted and removed
// from the registry as soon as nobody holds or waits for them, so the
// registry does not grow with the number of names ever used.
type Registry struct {
	mu    sync.Mutex
	locks map[string]*namedMutex
}

// namedMutex is a weight-1 semaphore shared by everyone locking the same
// name. refs counts holders plus waiters; the entry is reaped at zero.
type namedMutex struct {
	sem  *semaphore.Weighted
	refs int
}

// Lock is a held named lock. It must be released exactly once; extra
// Release calls are no-ops.
type Lock struct {
	registry *Registry
	name     string
	entry    *namedMutex
	once     sync.Once
}

// New creates an empty lock registry.
func New() *Registry {
	return &Registry{
		locks: make(map[string]*namedMutex),
	}
}

// Acquire blocks until the lock for name is held or ctx is done.
// A failed acquisition leaves no residual state in the registry.
func (r *Registry) Acquire(ctx context.Context, name string) (*Lock, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	entry := r.retain(name)

	if err := entry.sem.Acquire(ctx, 1); err != nil {
		r.release(name, entry)
		return nil, errors.Join(ErrTimeout, err)
	}

	return &Lock{registry: r, name: name, entry: entry}, nil
}

// AcquireTimeout acquires the lock for name, waiting at most timeout.
// A non-positive timeout attempts a single non-blocking acquisition.
func (r *Registry) AcquireTimeout(name string, timeout time.Duration) (*Lock, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	if timeout <= 0 {
		entry := r.retain(name)
		if !entry.sem.TryAcquire(1) {
			r.release(name, entry)
			return nil, ErrTimeout
		}
		return &Lock{registry: r, name: name, entry: entry}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return r.Acquire(ctx, name)
}

// Len reports how many names currently have holders or waiters.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}

// Release unlocks the named lock. Safe to call more than once; only the
// first call has an effect.
func (l *Lock) Release() {
	l.once.Do(func() {
		l.registry.mu.Lock()
		defer l.registry.mu.Unlock()

		l.entry.sem.Release(1)
		l.entry.refs--
		if l.entry.refs == 0 {
			delete(l.registry.locks, l.name)
		}
	})
}

// Name returns the name this lock was acquired under.
func (l *Lock) Name() string {
	return l.name
}

// retain returns the entry for name, creating it if needed, and counts
// the caller as a holder-or-waiter.
func (r *Registry) retain(name string) *namedMutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.locks[name]
	if !ok {
		entry = &namedMutex{sem: semaphore.NewWeighted(1)}
		r.locks[name] = entry
	}
	entry.refs++
	return entry
}

// release undoes retain for a caller that never got the lock.
func (r *Registry) release(name string, entry *namedMutex) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.refs--
	if entry.refs == 0 {
		delete(r.locks, name)
	}
}
