package config

import "errors"

var (
	// ErrParse is returned when the environment cannot be parsed into the
	// target struct. It wraps the underlying parser error.
	ErrParse = errors.New("config: failed to parse environment into config")

	// ErrNilPointer is returned when Load or Reload is given a nil target.
	ErrNilPointer = errors.New("config: nil pointer passed to loader")
)
