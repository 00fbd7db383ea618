package config

// Session storage backends.
const (
	SessionBackendFile   = "file"
	SessionBackendRedis  = "redis"
	SessionBackendMemory = "memory"
)

// SessionConfig configures where the token/user pair is persisted so a
// restart preserves the session.
type SessionConfig struct {
	// Backend selects the storage implementation: file, redis, memory.
	Backend string `env:"SESSION_BACKEND" envDefault:"file"`

	// Dir is the directory the file backend writes under.
	Dir string `env:"SESSION_DIR" envDefault:".discovery-session"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	switch s.Backend {
	case SessionBackendFile, SessionBackendRedis, SessionBackendMemory:
	default:
		s.Backend = SessionBackendFile
	}
	if s.Dir == "" {
		s.Dir = ".discovery-session"
	}
}

// RedisConfig configures the optional Redis session backend.
type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB" envDefault:"0"`
}
