package ttlcache

import "errors"

var (
	// ErrEmptyKey is returned when a write is attempted with an empty key.
	ErrEmptyKey = errors.New("ttlcache: key cannot be empty")

	// ErrZeroValue is returned when a write is attempted with the zero
	// value of the cache's value type. Stored zero values would be
	// indistinguishable from misses, so they are rejected up front.
	ErrZeroValue = errors.New("ttlcache: value cannot be the zero value")

	// ErrNilFactory is returned when GetOrAdd or GetOrSyncAdd is called
	// without a factory function.
	ErrNilFactory = errors.New("ttlcache: factory cannot be nil")

	// ErrClosed is returned for writes after Close.
	ErrClosed = errors.New("ttlcache: cache is closed")
)
