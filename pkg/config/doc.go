// Package config loads typed application configuration from environment
// variables, with optional .env file bootstrapping and per-type caching.
//
// It wraps github.com/caarlos0/env/v11 for struct parsing and
// github.com/joho/godotenv for env files:
//
//   - Load parses the environment into any struct with env tags and
//     caches the result by type, so every caller of the same config type
//     observes the same values for the lifetime of the process.
//   - LoadEnv reads one or more .env files before parsing; Load also
//     picks up a default .env on first use when present.
//   - MustLoad and MustLoadEnv panic on failure, for configuration the
//     process cannot run without.
//   - Reload and ResetCache bypass or drop the cache after the
//     environment changes, which is mainly useful in tests.
//
// # Usage
//
// Describe the configuration as a struct with env tags:
//
//	type CacheConfig struct {
//		TTL      time.Duration `env:"CACHE_TTL" envDefault:"5m"`
//		Interval time.Duration `env:"CACHE_MAINTENANCE_INTERVAL" envDefault:"1m"`
//	}
//
// then load it wherever it is needed:
//
//	var cfg CacheConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// Errors compare with errors.Is against ErrParse and ErrNilPointer.
package config
