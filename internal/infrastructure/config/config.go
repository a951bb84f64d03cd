package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the full environment surface of the backend. The signing secret,
// token lifetime and bootstrap admin password are required: a missing value
// fails startup rather than silently defaulting.
type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	JWTSecret       string `env:"JWT_SECRET,               required"`
	JWTExpirationMS int64  `env:"JWT_EXPIRATION_MS,        required"`
	AdminPassword   string `env:"BOOTSTRAP_ADMIN_PASSWORD, required"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Throttle ThrottleConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=tunelar"`
}

// RedisConfig is optional: an empty Addr disables the login throttle and the
// redis readiness check.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type ThrottleConfig struct {
	MaxFailures int           `env:"LOGIN_MAX_FAILURES,   default=10"`
	Window      time.Duration `env:"LOGIN_FAILURE_WINDOW, default=15m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// TokenTTL returns the configured token lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpirationMS) * time.Millisecond
}
