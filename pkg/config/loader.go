package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	cacheMu sync.Mutex
	cache   = make(map[string]any)

	dotenvOnce sync.Once
)

// Load populates v from the process environment, parsing fields by their
// env tags. Each configuration type is parsed once per process: later
// calls for the same type are served from an in-memory cache, so every
// component loading the same config sees identical values. A failed
// parse is not cached and is retried on the next call.
//
// The first Load in the process also reads the default .env file when
// one exists; a missing file is fine. Use LoadEnv to read specific env
// files before loading.
//
// Example:
//
//	type CacheConfig struct {
//		TTL     time.Duration `env:"CACHE_TTL" envDefault:"5m"`
//		MaxKeys int           `env:"CACHE_MAX_KEYS" envDefault:"10000"`
//	}
//
//	var cfg CacheConfig
//	if err := config.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		// The default .env is optional.
		_ = godotenv.Load()
	})

	key := typeKey[T]()

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParse, err)
	}

	cache[key] = *v
	return nil
}

// MustLoad is Load for configuration the process cannot start without;
// it panics on failure.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: failed to load required configuration: %v", err))
	}
}

// Reload re-parses the environment into v, replacing the cached copy for
// its type. Use it after the environment changed, typically in tests.
func Reload[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	var fresh T
	if err := env.Parse(&fresh); err != nil {
		return errors.Join(ErrParse, err)
	}

	cacheMu.Lock()
	cache[typeKey[T]()] = fresh
	cacheMu.Unlock()

	*v = fresh
	return nil
}

// ResetCache drops every cached configuration so the next Load of each
// type parses the environment again.
func ResetCache() {
	cacheMu.Lock()
	cache = make(map[string]any)
	cacheMu.Unlock()
}

// LoadEnv reads the given env files into the process environment before
// any configs are parsed. Without arguments it reads the default .env
// and, unlike the implicit bootstrap in Load, reports a missing file as
// an error. Earlier files win when the same variable appears twice.
func LoadEnv(files ...string) error {
	return godotenv.Load(files...)
}

// MustLoadEnv is LoadEnv that panics on failure.
func MustLoadEnv(files ...string) {
	if err := LoadEnv(files...); err != nil {
		panic(fmt.Sprintf("config: failed to load env files: %v", err))
	}
}

// typeKey returns the cache key for T, its fully qualified type name.
func typeKey[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
