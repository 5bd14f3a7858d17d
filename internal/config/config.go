package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// store backends
const (
	StoreCSV      = "csv"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	Environment string `toml:"-"`

	Host string
	Port int
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// protocols store
	StoreBackend      string `toml:"store_backend"`
	ProtocolsCSVPath  string `toml:"protocols_csv_path"`
	SQLitePath        string `toml:"sqlite_path"`
	ReloadIntervalMin int    `toml:"reload_interval_min"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// http
	CorsAllowedOrigins []string `toml:"cors_allowed_origins"`
	RateLimitPerMin    int      `toml:"rate_limit_per_min"`
	MCPEnabled         bool     `toml:"mcp_enabled"`
	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`
}

type Toml struct {
	Development *Config
	Production  *Config
	Docker      *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	case "ddev", "dockerdev", "docker":
		cfg = t.Docker
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	cfg.Environment = strings.ToLower(env)
	return cfg, nil
}

// Load decodes the TOML file at path and returns the validated config for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config for env %s: %w", env, err)
	}

	return cfg, nil
}

// Validate checks the store selection and fills defaults.
func (c *Config) Validate() error {
	if c.Port <= 0 {
		return errors.New("port not set")
	}

	if c.StoreBackend == "" {
		c.StoreBackend = StoreCSV
	}
	switch c.StoreBackend {
	case StoreCSV:
		if c.ProtocolsCSVPath == "" {
			return errors.New("protocols_csv_path is required for the csv store")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite_path is required for the sqlite store")
		}
	case StorePostgres:
		if c.PostgresHost == "" || c.PostgresDBName == "" {
			return errors.New("postgres_host and postgres_db_name are required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store_backend: %s", c.StoreBackend)
	}

	if c.ReloadIntervalMin < 0 {
		return errors.New("reload_interval_min must not be negative")
	}
	if len(c.CorsAllowedOrigins) == 0 {
		c.CorsAllowedOrigins = []string{"*"}
	}

	return nil
}

// ReloadInterval is zero when periodic reloading is disabled.
func (c *Config) ReloadInterval() time.Duration {
	return time.Duration(c.ReloadIntervalMin) * time.Minute
}

// RateLimitEnabled reports whether requests should go through the redis rate limiter.
func (c *Config) RateLimitEnabled() bool {
	return c.RateLimitPerMin > 0 && c.RedisHost != ""
}
