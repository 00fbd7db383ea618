// Package config holds environment-driven configuration for the
// discovery sync core and the bundled mock backend.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See the individual domain config
// files for the available variables:
//   - api.go: outbound API client configuration
//   - session.go: session persistence configuration
//   - mockbackend.go: mock backend server configuration
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// AppConfig composes the domain-specific configuration sections.
type AppConfig struct {
	// IsDev controls development mode behavior.
	IsDev bool `env:"DEV" envDefault:"false"`

	// API client configuration
	API APIConfig

	// Session persistence configuration
	Session SessionConfig
	Redis   RedisConfig `envPrefix:"REDIS_"`

	// Mock backend server configuration
	MockBackend MockBackendConfig
}

// Load reads configuration from the environment, loading a .env file
// first when one exists (development).
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}

// Sanitize applies guardrails to configuration values loaded from env.
func (c *AppConfig) Sanitize() {
	c.API.Sanitize()
	c.Session.Sanitize()
	c.MockBackend.Sanitize()
}
