package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all relay settings, loaded from the environment.
type Config struct {
	Host string `env:"RELAY_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"RELAY_PORT" envDefault:"8090"`
	Env  string `env:"RELAY_ENV" envDefault:"development"`

	// Base URL of the notification/activity persistence API. Empty means
	// every persistence call fails immediately (logged, not fatal).
	NotifyBaseURL string `env:"NOTIFY_API_URL"`

	ReapInterval time.Duration `env:"REAP_INTERVAL" envDefault:"30s"`

	ReadBufferSize  int `env:"WS_READ_BUFFER" envDefault:"1024"`
	WriteBufferSize int `env:"WS_WRITE_BUFFER" envDefault:"1024"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"chat:"`
}

// Load reads configuration from environment variables, consulting a .env
// file first if one exists (for development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }
