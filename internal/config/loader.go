// Package config provides centralized configuration management for genelens.
// It layers built-in defaults, the user config file, GENELENS_* environment
// variables and runtime overrides with viper, then decodes the merged
// settings into a typed Config with mapstructure.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/genelens/genelens/internal/appid"
)

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex
)

// envSpec maps one environment variable onto a config key.
type envSpec struct {
	Name string
	Key  string
}

// Load loads configuration from defaults, the discovered user config file,
// the environment and runtime overrides, in increasing precedence.
//
// This function is safe to call multiple times (e.g., for config reload)
func Load(ctx context.Context, runtimeOverrides ...map[string]any) (*Config, error) {
	return LoadFile(ctx, "", runtimeOverrides...)
}

// LoadFile is Load with an explicit config file. An explicit file must
// exist; a discovered one is optional.
func LoadFile(_ context.Context, path string, runtimeOverrides ...map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	source, err := readConfigFile(v, path)
	if err != nil {
		return nil, err
	}

	v.SetEnvPrefix(appid.ViperEnvPrefix())
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, spec := range getEnvSpecs() {
		if err := v.BindEnv(spec.Key, spec.Name); err != nil {
			return nil, fmt.Errorf("bind %s: %w", spec.Name, err)
		}
	}

	for _, overrides := range runtimeOverrides {
		for key, value := range flatten("", overrides) {
			v.Set(key, value)
		}
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Source = source

	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	setConfig(cfg)
	return cfg, nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

func readConfigFile(v *viper.Viper, path string) (string, error) {
	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return "", fmt.Errorf("read config file %s: %w", path, err)
		}
		return v.ConfigFileUsed(), nil
	}

	if dir := filepath.Dir(DefaultConfigPath()); dir != "." {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("read config file: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// setDefaults registers the built-in defaults. Every key must have a default
// so that AllSettings sees environment overrides for it.
func setDefaults(v *viper.Viper) {
	// Ensembl defaults
	v.SetDefault("ensembl.base_url", "https://rest.ensembl.org")
	v.SetDefault("ensembl.requests_per_second", 15)
	v.SetDefault("ensembl.timeout", "30s")
	v.SetDefault("ensembl.user_agent", "")

	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Store defaults
	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", "")
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")

	v.SetDefault("journal.enabled", true)
	v.SetDefault("output.format", "table")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "SIMPLE")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	// Health check defaults
	v.SetDefault("health.enabled", true)
}

// getEnvSpecs returns the short environment variable names. Every key is
// also reachable through its long form, e.g. GENELENS_SERVER_PORT.
func getEnvSpecs() []envSpec {
	prefix := appid.EnvPrefix

	return []envSpec{
		// Ensembl config
		{Name: prefix + "BASE_URL", Key: "ensembl.base_url"},
		{Name: prefix + "RPS", Key: "ensembl.requests_per_second"},
		{Name: prefix + "TIMEOUT", Key: "ensembl.timeout"},
		{Name: prefix + "USER_AGENT", Key: "ensembl.user_agent"},

		// Server config
		{Name: prefix + "HOST", Key: "server.host"},
		{Name: prefix + "PORT", Key: "server.port"},
		// Duration fields are parsed as strings and converted by mapstructure decode hook
		{Name: prefix + "READ_TIMEOUT", Key: "server.read_timeout"},
		{Name: prefix + "WRITE_TIMEOUT", Key: "server.write_timeout"},
		{Name: prefix + "IDLE_TIMEOUT", Key: "server.idle_timeout"},
		{Name: prefix + "SHUTDOWN_TIMEOUT", Key: "server.shutdown_timeout"},

		// Logging config
		{Name: prefix + "LOG_LEVEL", Key: "logging.level"},
		{Name: prefix + "LOG_PROFILE", Key: "logging.profile"},

		// Store config
		{Name: prefix + "DB_DRIVER", Key: "store.driver"},
		{Name: prefix + "DB_PATH", Key: "store.path"},
		{Name: prefix + "DB_URL", Key: "store.url"},
		{Name: prefix + "DB_AUTH_TOKEN", Key: "store.auth_token"},

		{Name: prefix + "JOURNAL_ENABLED", Key: "journal.enabled"},
		{Name: prefix + "OUTPUT_FORMAT", Key: "output.format"},

		// Metrics config
		{Name: prefix + "METRICS_ENABLED", Key: "metrics.enabled"},
		{Name: prefix + "METRICS_PORT", Key: "metrics.port"},

		// Health config
		{Name: prefix + "HEALTH_ENABLED", Key: "health.enabled"},
	}
}

// flatten turns nested override maps into dotted viper keys.
func flatten(prefix string, in map[string]any) map[string]any {
	out := map[string]any{}
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		key := strings.ToLower(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := in[k].(map[string]any); ok {
			for nk, nv := range flatten(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[key] = in[k]
	}
	return out
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	configDir := gfconfig.GetAppConfigDir(appid.ConfigName)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}

// DefaultDataDir returns the XDG-compliant data directory for the app.
func DefaultDataDir() string {
	return gfconfig.GetAppDataDir(appid.ConfigName)
}

// DefaultStorePath returns the XDG-compliant path to the journal database.
func DefaultStorePath() string {
	dataDir := DefaultDataDir()
	if strings.TrimSpace(dataDir) == "" {
		return "./" + appid.BinaryName + ".db"
	}
	return filepath.Join(dataDir, appid.BinaryName+".db")
}

// WriteDefaultConfig writes a commented starter config to path unless a
// file already exists there.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	// #nosec G301 -- config directories use 0755 like other XDG app dirs
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	// #nosec G306 -- config carries no secrets by default
	return os.WriteFile(path, []byte(starterConfig), 0644)
}

const starterConfig = `# genelens configuration
ensembl:
  base_url: https://rest.ensembl.org
  requests_per_second: 15
  timeout: 30s

server:
  host: localhost
  port: 8080

journal:
  enabled: true

output:
  format: table

logging:
  level: info
  profile: SIMPLE

metrics:
  enabled: true
  port: 9090
`
