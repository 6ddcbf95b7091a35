package ttlcache

import "time"

// Config holds cache configuration suitable for loading from the
// environment.
type Config struct {
	// Expiration is the TTL after which an entry becomes eligible for eviction.
	Expiration time.Duration `env:"CACHE_EXPIRATION" envDefault:"5m"`
	// MaintenanceInterval is the period between background eviction sweeps.
	MaintenanceInterval time.Duration `env:"CACHE_MAINTENANCE_INTERVAL" envDefault:"1m"`
}

// DefaultConfig returns the defaults used by New.
func DefaultConfig() Config {
	return Config{
		Expiration:          5 * time.Minute,
		MaintenanceInterval: time.Minute,
	}
}

// NewFromConfig creates a cache from the provided Config. Only positive
// durations from the config are applied; additional options take
// precedence.
func NewFromConfig[V any](cfg Config, opts ...Option) *Cache[V] {
	configOpts := make([]Option, 0, 2+len(opts))

	if cfg.Expiration > 0 {
		configOpts = append(configOpts, WithExpiration(cfg.Expiration))
	}
	if cfg.MaintenanceInterval > 0 {
		configOpts = append(configOpts, WithMaintenanceInterval(cfg.MaintenanceInterval))
	}

	configOpts = append(configOpts, opts...)

	return New[V](configOpts...)
}
