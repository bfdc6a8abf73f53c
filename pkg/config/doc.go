// Package config loads environment variables into tagged structs.
//
// It wraps caarlos0/env for parsing and joho/godotenv for optional .env
// files. Every configurable component in this module declares a Config struct
// with `env` tags and loads it through this package:
//
//	type Config struct {
//		PollInterval time.Duration `env:"NOTIFY_POLL_INTERVAL" envDefault:"120s"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		// handle error
//	}
package config
