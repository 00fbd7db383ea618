package config

import "time"

// MockBackendConfig configures the bundled mock authentication and
// catalog server. It stands in for the real backend during development
// and end-to-end tests; the sync core treats it as opaque.
type MockBackendConfig struct {
	// Addr is the address to bind the mock server to.
	Addr string `env:"MOCK_BACKEND_ADDR" envDefault:":3001"`

	// JWTSecret signs the HS256 access tokens the mock server issues.
	JWTSecret string `env:"MOCK_BACKEND_JWT_SECRET" envDefault:"dev-only-secret"`

	// TokenTTL is the access token lifetime.
	TokenTTL time.Duration `env:"MOCK_BACKEND_TOKEN_TTL" envDefault:"24h"`

	// RateLimit is the per-IP request budget per minute. Zero disables
	// rate limiting.
	RateLimit int `env:"MOCK_BACKEND_RATE_LIMIT" envDefault:"300"`
}

// Sanitize applies guardrails to mock backend configuration values.
func (m *MockBackendConfig) Sanitize() {
	if m.Addr == "" {
		m.Addr = ":3001"
	}
	if m.TokenTTL <= 0 {
		m.TokenTTL = 24 * time.Hour
	}
	if m.RateLimit < 0 {
		m.RateLimit = 0
	}
}
