package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Config represents the complete application configuration. Values are
// layered: built-in defaults, then the YAML config file, then GENELENS_*
// environment variables, then runtime overrides (CLI flags).
type Config struct {
	Ensembl EnsemblConfig `mapstructure:"ensembl"`
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Journal JournalConfig `mapstructure:"journal"`
	Output  OutputConfig  `mapstructure:"output"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Health  HealthConfig  `mapstructure:"health"`

	// Source is the config file that was read, if any.
	Source string `mapstructure:"-"`
}

// EnsemblConfig configures the upstream REST client.
type EnsemblConfig struct {
	BaseURL string `mapstructure:"base_url"`

	// RequestsPerSecond is both the concurrency bound and the inverse of the
	// minimum spacing between request starts.
	RequestsPerSecond int `mapstructure:"requests_per_second"`

	// Timeout bounds a single HTTP exchange. Zero disables the timeout.
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// ServerConfig contains HTTP gateway configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig contains database configuration for libsql/Turso
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// JournalConfig controls the request journal.
type JournalConfig struct {
	// Enabled records every upstream request in the store.
	Enabled bool `mapstructure:"enabled"`
}

// OutputConfig selects the default CLI output format.
type OutputConfig struct {
	// Format is one of table, json, yaml, markdown.
	Format string `mapstructure:"format"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects the logging complexity level
	// Valid values: SIMPLE, STRUCTURED, ENTERPRISE
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	// Enabled controls whether metrics are exposed
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated metrics endpoint port (Prometheus format)
	Port int `mapstructure:"port"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	// Enabled controls whether health endpoints are exposed
	Enabled bool `mapstructure:"enabled"`
}

var (
	validLogLevels     = []string{"trace", "debug", "info", "warn", "error"}
	validLogProfiles   = []string{"SIMPLE", "STRUCTURED", "ENTERPRISE"}
	validOutputFormats = []string{"table", "json", "yaml", "markdown"}
)

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	base, err := url.Parse(strings.TrimSpace(c.Ensembl.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return fmt.Errorf("ensembl.base_url must be an absolute URL, got %q", c.Ensembl.BaseURL)
	}
	if c.Ensembl.RequestsPerSecond <= 0 {
		return fmt.Errorf("ensembl.requests_per_second must be positive, got %d", c.Ensembl.RequestsPerSecond)
	}
	if c.Ensembl.Timeout < 0 {
		return fmt.Errorf("ensembl.timeout must not be negative, got %s", c.Ensembl.Timeout)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Metrics.Enabled && (c.Metrics.Port < 0 || c.Metrics.Port > 65535) {
		return fmt.Errorf("metrics.port out of range: %d", c.Metrics.Port)
	}
	if driver := strings.TrimSpace(c.Store.Driver); driver != "" && driver != "libsql" {
		return fmt.Errorf("unsupported store.driver: %s", driver)
	}
	if !slices.Contains(validLogLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("logging.level must be one of %s, got %q", strings.Join(validLogLevels, ", "), c.Logging.Level)
	}
	if !slices.Contains(validLogProfiles, strings.ToUpper(c.Logging.Profile)) {
		return fmt.Errorf("logging.profile must be one of %s, got %q", strings.Join(validLogProfiles, ", "), c.Logging.Profile)
	}
	if !slices.Contains(validOutputFormats, strings.ToLower(c.Output.Format)) {
		return fmt.Errorf("output.format must be one of %s, got %q", strings.Join(validOutputFormats, ", "), c.Output.Format)
	}
	return nil
}
