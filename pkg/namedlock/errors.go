package namedlock

import "errors"

var (
	// ErrEmptyName is returned when a lock name is empty.
	ErrEmptyName = errors.New("namedlock: lock name cannot be empty")

	// ErrTimeout is returned when a lock is not acquired within the caller's budget.
	ErrTimeout = errors.New("namedlock: lock not acquired in time")
)
