// Package settings provides a small, YAML-file-backed key/value store
// for runtime-tunable application settings, with typed, fallback-based
// reads.
//
// A Store holds a flat document loaded once at Open and kept in memory;
// every write persists the whole document back to the file atomically.
// Reads never touch the disk and never fail: Get converts the stored
// value to the requested type on a best-effort basis and returns the
// caller's fallback when the key is absent or the value does not fit.
//
// # Usage
//
//	store, err := settings.Open("app-settings.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ttl := settings.Get(store, "cache_ttl", 5*time.Minute)
//	limit := settings.Get(store, "max_items", 1000)
//
//	if err := store.Set("max_items", 2000); err != nil {
//		log.Fatal(err)
//	}
//
// Values round-trip through the YAML codec, so a "cache_ttl: 90s" line
// in the file resolves for Get[time.Duration], and numeric settings
// resolve for any numeric target wide enough to hold them.
package settings
