// Package config loads store settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds the Redis connection parameters and the category key
// prefixes. Values come from the environment, with a .env file applied
// first when present.
type Config struct {
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	ValidPrefix       string `env:"VALID_TOKEN_PREFIX" envDefault:"valid-jwt"`
	BlacklistedPrefix string `env:"BLACKLISTED_TOKEN_PREFIX" envDefault:"blacklisted-jwt"`

	ScanBatchSize int64  `env:"SCAN_BATCH_SIZE" envDefault:"100"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads a .env file if one exists, then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
