// Package config loads and validates service configuration from YAML/JSON
// files with environment variable overrides.
package config

import (
	"fmt"
	"time"
)

// Backend names for the repository selection
const (
	BackendMemory      = "memory"
	BackendSQLite      = "sqlite"
	BackendPostgres    = "postgres"
	BackendPostgresSQL = "postgres-sql"
	BackendRemote      = "remote"
)

// Config is the top-level service configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" json:"server"`
	Repository RepositoryConfig `yaml:"repository" json:"repository"`
	Auth       AuthConfig       `yaml:"auth" json:"auth"`
	Events     EventsConfig     `yaml:"events" json:"events"`
	Observe    ObserveConfig    `yaml:"observe" json:"observe"`
	Log        LogConfig        `yaml:"log" json:"log"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Addr              string        `yaml:"addr" json:"addr"`
	RequestTimeout    time.Duration `yaml:"request_timeout" json:"request_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// RepositoryConfig selects and configures the storage backend
type RepositoryConfig struct {
	// Backend is one of memory|sqlite|postgres|postgres-sql|remote
	Backend string `yaml:"backend" json:"backend"`

	// DSN is the database connection string (sqlite path, postgres URL)
	DSN string `yaml:"dsn" json:"dsn"`

	// BaseURL is the upstream service URL for the remote backend
	BaseURL string `yaml:"base_url" json:"base_url"`

	// Latency adds an artificial delay to the memory backend (demos)
	Latency time.Duration `yaml:"latency" json:"latency"`

	MaxOpenConns int `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns" json:"max_idle_conns"`
}

// AuthConfig configures JWT authentication; an empty secret disables auth
type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret" json:"jwt_secret"`
	TokenExpiry time.Duration `yaml:"token_expiry" json:"token_expiry"`
}

// EventsConfig configures change-event publishing
type EventsConfig struct {
	// NATSURL enables NATS publishing when non-empty
	NATSURL string `yaml:"nats_url" json:"nats_url"`

	// SubjectPrefix is prepended to event subjects (default "todos")
	SubjectPrefix string `yaml:"subject_prefix" json:"subject_prefix"`
}

// ObserveConfig configures metrics and tracing
type ObserveConfig struct {
	// TracingExporter is one of none|stdout|zipkin|jaeger
	TracingExporter string `yaml:"tracing_exporter" json:"tracing_exporter"`

	// TracingEndpoint is the collector endpoint for zipkin/jaeger
	TracingEndpoint string `yaml:"tracing_endpoint" json:"tracing_endpoint"`
}

// LogConfig configures the logger
type LogConfig struct {
	// Format is "text" or "json"
	Format string `yaml:"format" json:"format"`
}

// Default returns the configuration used when no file is provided
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:              ":8080",
			RequestTimeout:    30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			RequestsPerMinute: 600,
		},
		Repository: RepositoryConfig{
			Backend:      BackendMemory,
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
		Auth: AuthConfig{
			TokenExpiry: 24 * time.Hour,
		},
		Events: EventsConfig{
			SubjectPrefix: "todos",
		},
		Observe: ObserveConfig{
			TracingExporter: "none",
		},
		Log: LogConfig{
			Format: "text",
		},
	}
}

// Load builds the service configuration from an optional file path plus
// TODO_* environment overrides, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()
	if err := LoadWithEnv(path, "TODO", &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate fails fast on configurations the server cannot start with
func (c Config) Validate() error {
	switch c.Repository.Backend {
	case BackendMemory:
	case BackendSQLite, BackendPostgres, BackendPostgresSQL:
		if c.Repository.DSN == "" {
			return fmt.Errorf("repository.dsn is required for backend %q", c.Repository.Backend)
		}
	case BackendRemote:
		if c.Repository.BaseURL == "" {
			return fmt.Errorf("repository.base_url is required for backend %q", c.Repository.Backend)
		}
	default:
		return fmt.Errorf("unknown repository backend %q", c.Repository.Backend)
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive")
	}

	switch c.Observe.TracingExporter {
	case "", "none", "stdout":
	case "zipkin", "jaeger":
		if c.Observe.TracingEndpoint == "" {
			return fmt.Errorf("observe.tracing_endpoint is required for exporter %q", c.Observe.TracingExporter)
		}
	default:
		return fmt.Errorf("unknown tracing exporter %q", c.Observe.TracingExporter)
	}

	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}

	return nil
}
