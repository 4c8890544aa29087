package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load allocates a T, parses environment variables into it via `env` tags,
// and returns it.
//
// Example:
//
//	type ServerConfig struct {
//	    Port     int    `env:"HTTP_PORT" envDefault:"8080"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
//	cfg, err := config.Load[ServerConfig]()
func Load[T any]() (*T, error) {
	cfg := new(T)
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
