package config

import (
	"errors"
)

// Sentinel error kinds for configuration. Load wraps provider and parser
// failures in ErrLoadConfig and Validate reports unusable values with
// ErrInvalidConfig.
var (
	ErrInvalidConfig = errors.New("invalid generator config")
	ErrLoadConfig    = errors.New("cannot load generator config")
)
