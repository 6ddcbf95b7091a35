package settings

import "errors"

var (
	// ErrEmptyKey is returned when an empty string is used as a setting key.
	ErrEmptyKey = errors.New("settings: setting key cannot be empty")

	// ErrLoad is returned when the settings file exists but cannot be read
	// or parsed. It wraps the underlying I/O or YAML error.
	ErrLoad = errors.New("settings: failed to load settings file")

	// ErrSave is returned when persisting the settings file fails. The
	// in-memory document is left unchanged. It wraps the underlying error.
	ErrSave = errors.New("settings: failed to save settings file")
)
