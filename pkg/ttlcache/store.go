package ttlcache

import (
	"sync"
	"time"
)

// record is a single cached value with its last-write timestamp. The
// timestamp is set on every write and never refreshed by reads.
type record[V any] struct {
	value     V
	updatedAt time.Time
}

// store is the concurrent entry map backing a Cache. All methods are safe
// for concurrent use from multiple goroutines; the lock is held only for
// the duration of the map operation.
type store[V any] struct {
	mu      sync.RWMutex
	entries map[string]record[V]
}

func newStore[V any]() *store[V] {
	return &store[V]{
		entries: make(map[string]record[V]),
	}
}

func (s *store[V]) get(key string) (record[V], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.entries[key]
	return rec, ok
}

func (s *store[V]) set(key string, rec record[V]) {
	s.mu.Lock()
	s.entries[key] = rec
	s.mu.Unlock()
}

// remove takes the record for key out of the store, reporting whether it
// was present.
func (s *store[V]) remove(key string) (record[V], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.entries[key]
	if ok {
		delete(s.entries, key)
	}
	return rec, ok
}

// removeExpired deletes key only if it is still present and its record is
// still older than threshold. A record refreshed between the sweep
// snapshot and this call is left in place.
func (s *store[V]) removeExpired(key string, threshold time.Time) (record[V], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.entries[key]
	if !ok || !rec.updatedAt.Before(threshold) {
		return record[V]{}, false
	}

	delete(s.entries, key)
	return rec, true
}

func (s *store[V]) clear() {
	s.mu.Lock()
	s.entries = make(map[string]record[V])
	s.mu.Unlock()
}

func (s *store[V]) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// expiredKeys returns a snapshot of the keys whose records are older than
// threshold. Entries written during the scan may or may not be included;
// the sweep re-checks each key before removal.
func (s *store[V]) expiredKeys(threshold time.Time) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key, rec := range s.entries {
		if rec.updatedAt.Before(threshold) {
			keys = append(keys, key)
		}
	}
	return keys
}
