package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	TokenTTL      time.Duration
	PostgresDSN   string
	Redis         RedisConfig
	AuditBuffer   int
	// AdminBootstrapToken gates self-registration of Admin accounts. When
	// empty, no one can register as Admin.
	AdminBootstrapToken string
}

// RedisConfig tunes the optional scheme cache connection.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// SchemeCacheTTL bounds staleness of cached scheme reference data.
var SchemeCacheTTL = 5 * time.Minute

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("JANSEVA_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          addr,
		JWTSigningKey: jwtSigningKey,
		TokenTTL:      durationEnv("JANSEVA_TOKEN_TTL", time.Hour),
		PostgresDSN:   os.Getenv("JANSEVA_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("JANSEVA_REDIS_URL"),
			PoolSize:     intEnv("JANSEVA_REDIS_POOL_SIZE", 10),
			MinIdleConns: intEnv("JANSEVA_REDIS_MIN_IDLE", 2),
			DialTimeout:  durationEnv("JANSEVA_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationEnv("JANSEVA_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationEnv("JANSEVA_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		AuditBuffer:         intEnv("JANSEVA_AUDIT_BUFFER", 256),
		AdminBootstrapToken: os.Getenv("JANSEVA_ADMIN_BOOTSTRAP_TOKEN"),
	}
}

func intEnv(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func durationEnv(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return v
}
