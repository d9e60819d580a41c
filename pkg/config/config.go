package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// ClientConfig selects the target server for the sync client. The
// WebSocket endpoint is always derived from the same base URL.
type ClientConfig struct {
	BaseURL string `env:"TOUCHLINE_API_URL" envDefault:"http://localhost:8000"`
}

// LoadClient reads the client configuration from the environment.
func LoadClient() (ClientConfig, error) {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return ClientConfig{}, fmt.Errorf("failed to parse client config: %w", err)
	}
	return cfg, nil
}

// WSBaseURL derives the WebSocket base from the HTTP base by substituting
// the scheme: http becomes ws, https becomes wss.
func (c ClientConfig) WSBaseURL() string {
	switch {
	case strings.HasPrefix(c.BaseURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.BaseURL, "https://")
	case strings.HasPrefix(c.BaseURL, "http://"):
		return "ws://" + strings.TrimPrefix(c.BaseURL, "http://")
	default:
		return c.BaseURL
	}
}

// ServerConfig configures the reference room server. Exactly one backing
// store is chosen: Postgres when a DSN is set, SQLite when a path is set,
// in-memory otherwise.
type ServerConfig struct {
	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":8000"`
	PostgresDSN   string `env:"POSTGRES_DSN"`
	SQLitePath    string `env:"SQLITE_PATH"`
	MigrationsDir string `env:"MIGRATIONS_DIR" envDefault:"migrations/sqlite"`
}

// LoadServer reads the server configuration from the environment.
func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("failed to parse server config: %w", err)
	}
	return cfg, nil
}
