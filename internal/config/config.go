package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

const envDevelopment = "development"

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env               string        `env:"APP_ENV" envDefault:"development"`
	Port              string        `env:"PORT" envDefault:"8080"`
	DBPath            string        `env:"DB_PATH" envDefault:"./dev.db"`
	AutoMigrate       bool          `env:"AUTO_MIGRATE" envDefault:"true"`
	ExportDutyPercent float64       `env:"EXPORT_DUTY_PERCENT" envDefault:"5"`
	StrictInputs      bool          `env:"STRICT_INPUTS" envDefault:"false"`
	RedisAddr         string        `env:"REDIS_ADDR"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisDB           int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL          time.Duration `env:"CACHE_TTL" envDefault:"10m"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads the local .env file, if any, and then parses the environment.
func Load() (Config, error) {
	// Best-effort: production injects real environment variables.
	if _, err := loadDotEnv(".env"); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.ExportDutyPercent < 0 || cfg.ExportDutyPercent > 100 {
		return Config{}, fmt.Errorf("EXPORT_DUTY_PERCENT must be between 0 and 100, got %v", cfg.ExportDutyPercent)
	}

	return cfg, nil
}

// IsDev reports whether the application runs in the development environment.
func (c Config) IsDev() bool {
	return c.Env == envDevelopment
}

// CacheEnabled reports whether a Redis address was configured.
func (c Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}
