package ttlcache

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/cachekit/pkg/namedlock"
)

type config struct {
	expiration time.Duration
	interval   time.Duration
	logger     *slog.Logger
	locks      *namedlock.Registry
}

func defaultConfig() *config {
	return &config{
		expiration: 5 * time.Minute,
		interval:   time.Minute,
	}
}

// Option configures a cache at construction time.
type Option func(*config)

// WithExpiration sets the TTL after which an entry becomes eligible for
// eviction, measured from its last write.
func WithExpiration(d time.Duration) Option {
	if d <= 0 {
		panic("WithExpiration: duration must be > 0")
	}
	return func(c *config) { c.expiration = d }
}

// WithMaintenanceInterval sets the period between background sweeps.
func WithMaintenanceInterval(d time.Duration) Option {
	if d <= 0 {
		panic("WithMaintenanceInterval: duration must be > 0")
	}
	return func(c *config) { c.interval = d }
}

// WithLogger supplies an external slog.Logger instance. If nil, a noop
// logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithLockRegistry shares a named-lock registry between caches. Caches
// sharing a registry serialize GetOrSyncAdd construction for identical
// keys; by default each cache owns a private registry.
func WithLockRegistry(r *namedlock.Registry) Option {
	if r == nil {
		panic("WithLockRegistry: nil registry")
	}
	return func(c *config) { c.locks = r }
}
