package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// ServerConfig holds the development server's configuration, read from
// the environment.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `env:"SERVER_ADDRESS, default=localhost:8080"`

	// DatabaseDSN is the PostgreSQL connection string.
	DatabaseDSN string `env:"DATABASE_DSN"`

	// LogLevel is the minimum level emitted by the logger.
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// SessionTTL is how long a server-side session token stays valid.
	SessionTTL time.Duration `env:"SESSION_TTL, default=24h"`

	// SweepInterval is how often expired session tokens are removed.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL, default=1h"`
}

// LoadServer reads the server configuration from environment variables.
func LoadServer(ctx context.Context) (*ServerConfig, error) {
	var cfg ServerConfig
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
