package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var defaultEnvOnce sync.Once

// Load parses environment variables into the provided config struct based on
// its `env` field tags. On first use it attempts to load a default .env file;
// a missing file is not an error.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	defaultEnvOnce.Do(func() {
		// The .env file is optional; real environment variables win anyway.
		_ = godotenv.Load()
	})

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad is like Load but panics on failure. Intended for initialization
// paths where a missing required variable should prevent startup.
func MustLoad[T any](v *T) {
	if err := Load[T](v); err != nil {
		panic(err)
	}
}

// LoadEnv loads one or more .env files into the process environment before
// config structs are parsed. Unlike the implicit default load, explicitly
// requested files must exist.
func LoadEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			return errors.Join(ErrLoadingEnvFile, fmt.Errorf("%s: %w", path, err))
		}
	}
	return nil
}
