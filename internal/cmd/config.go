package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/genelens/genelens/internal/config"
	apperrors "github.com/genelens/genelens/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or inspect the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Write a starter config file to --config, or to the default location
($XDG_CONFIG_HOME/genelens/config.yaml). An existing file is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := strings.TrimSpace(cfgFile)
		if path == "" {
			path = config.DefaultConfigPath()
		}
		if path == "" {
			return apperrors.NewConfigInvalidError("cannot determine a config directory; pass --config")
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return apperrors.WrapConfigInvalid(cmd.Context(), err, err.Error())
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return err
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults, the config file, environment
variables and flags have been applied. Secrets are redacted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(effectiveConfig(cfg))
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		source := cfg.Source
		if source == "" {
			source = "(none, defaults and environment)"
		}
		_, _ = fmt.Fprintf(w, "# config file: %s\n", source)
		_, err = w.Write(out)
		return err
	},
}

// effectiveConfig returns cfg as a YAML-friendly tree using the config file
// keys, with the store auth token redacted.
func effectiveConfig(cfg *config.Config) map[string]any {
	token := ""
	if cfg.Store.AuthToken != "" {
		token = "<redacted>"
	}
	return map[string]any{
		"ensembl": map[string]any{
			"base_url":            cfg.Ensembl.BaseURL,
			"requests_per_second": cfg.Ensembl.RequestsPerSecond,
			"timeout":             cfg.Ensembl.Timeout.String(),
			"user_agent":          cfg.Ensembl.UserAgent,
		},
		"server": map[string]any{
			"host":             cfg.Server.Host,
			"port":             cfg.Server.Port,
			"read_timeout":     cfg.Server.ReadTimeout.String(),
			"write_timeout":    cfg.Server.WriteTimeout.String(),
			"idle_timeout":     cfg.Server.IdleTimeout.String(),
			"shutdown_timeout": cfg.Server.ShutdownTimeout.String(),
		},
		"store": map[string]any{
			"driver":     cfg.Store.Driver,
			"path":       cfg.Store.Path,
			"url":        cfg.Store.URL,
			"auth_token": token,
		},
		"journal": map[string]any{"enabled": cfg.Journal.Enabled},
		"output":  map[string]any{"format": cfg.Output.Format},
		"logging": map[string]any{"level": cfg.Logging.Level, "profile": cfg.Logging.Profile},
		"metrics": map[string]any{"enabled": cfg.Metrics.Enabled, "port": cfg.Metrics.Port},
		"health":  map[string]any{"enabled": cfg.Health.Enabled},
	}
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
