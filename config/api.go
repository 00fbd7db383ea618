package config

import "time"

// APIConfig configures the outbound REST clients. These knobs are the
// only per-environment surface the sync core needs: where the backend
// lives, how long a call may take, and how stubborn idempotent reads
// are allowed to be.
type APIConfig struct {
	// BaseURL is the backend root every request path is resolved
	// against (e.g. "http://localhost:8000/api").
	BaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8000/api"`

	// Timeout is the fixed per-request budget.
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"10s"`

	// RetryCount is the number of additional attempts for idempotent
	// GET calls that failed with a timeout or network error. Writes
	// are never retried.
	RetryCount int `env:"API_RETRY_COUNT" envDefault:"3"`

	// RetryDelay is the fixed pause between retry attempts.
	RetryDelay time.Duration `env:"API_RETRY_DELAY" envDefault:"1s"`
}

// Sanitize applies guardrails to API client configuration values.
func (a *APIConfig) Sanitize() {
	if a.Timeout <= 0 {
		a.Timeout = 10 * time.Second
	}
	if a.RetryCount < 0 {
		a.RetryCount = 0
	}
	if a.RetryDelay <= 0 {
		a.RetryDelay = time.Second
	}
}
