package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fulmenhq/gofulmen/appidentity"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/genelens/genelens/internal/appid"
	"github.com/genelens/genelens/internal/config"
	apperrors "github.com/genelens/genelens/internal/errors"
	"github.com/genelens/genelens/internal/observability"
	"github.com/genelens/genelens/internal/output"
)

var (
	cfgFile   string
	verbose   bool
	noJournal bool

	appIdentity *appidentity.Identity

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// GetAppIdentity returns the app identity
func GetAppIdentity() *appidentity.Identity {
	return appIdentity
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   filepath.Base(os.Args[0]),
	Short: "Rate-limited client for the Ensembl REST API",
	Long: `Query the Ensembl REST API (https://rest.ensembl.org) for cross-references,
linkage disequilibrium and identifier lookups.

Every request goes through one shared rate limiter (15 requests per second by
default, the public Ensembl quota). Use "serve" to share that limiter between
several local tools through an HTTP gateway.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Disable global telemetry early so one-shot commands never emit metrics
	// to stdout. Server mode initializes the Prometheus exporter later.
	observability.DisableTelemetry()

	if identity, err := appid.Get(context.Background()); err == nil && identity != nil {
		appIdentity = identity
		rootCmd.Use = identity.BinaryName
	}

	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default is $XDG_CONFIG_HOME/%s/config.yaml)", appid.ConfigName))
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
	flags.Int("rps", 0, "Ensembl requests per second (default from config, 15)")
	flags.String("base-url", "", "Ensembl REST base URL (default from config)")
	flags.StringP("output-format", "o", "", "Output format: table|json|yaml|markdown (default from config)")
	flags.String("out", "", "Write output to a file (default stdout)")
	flags.BoolVar(&noJournal, "no-journal", false, "Do not record requests in the local journal")
}

// initConfig initializes the CLI logger. Configuration itself is loaded per
// command by loadConfig so that flag overrides apply.
func initConfig() {
	name := appid.BinaryName
	if appIdentity != nil && appIdentity.BinaryName != "" {
		name = appIdentity.BinaryName
	}
	observability.InitCLILogger(name, verbose)
}

// loadConfig loads the layered configuration with the global flags applied
// as the highest-precedence overrides. Command-specific overrides in extra
// win over the global ones.
func loadConfig(cmd *cobra.Command, extra ...map[string]any) (*config.Config, error) {
	overrides, err := flagOverrides(cmd)
	if err != nil {
		return nil, err
	}
	for _, more := range extra {
		for key, value := range more {
			overrides[key] = value
		}
	}

	cfg, err := config.LoadFile(cmd.Context(), cfgFile, overrides)
	if err != nil {
		return nil, apperrors.WrapConfigInvalid(cmd.Context(), err, "failed to load configuration")
	}

	if observability.CLILogger != nil {
		if cfg.Source != "" {
			observability.CLILogger.Debug("Using config file", zap.String("path", cfg.Source))
		} else {
			observability.CLILogger.Debug("No config file found, using defaults and environment variables")
		}
	}
	return cfg, nil
}

// flagOverrides maps explicitly set global flags onto config keys.
func flagOverrides(cmd *cobra.Command) (map[string]any, error) {
	flags := cmd.Flags()
	overrides := map[string]any{}

	if flags.Changed("rps") {
		rps, err := flags.GetInt("rps")
		if err != nil {
			return nil, err
		}
		overrides["ensembl.requests_per_second"] = rps
	}
	if flags.Changed("base-url") {
		baseURL, err := flags.GetString("base-url")
		if err != nil {
			return nil, err
		}
		overrides["ensembl.base_url"] = baseURL
	}
	if flags.Changed("output-format") {
		value, err := flags.GetString("output-format")
		if err != nil {
			return nil, err
		}
		format, err := output.ParseFormat(value)
		if err != nil {
			return nil, apperrors.WrapInvalidInput(cmd.Context(), err, err.Error())
		}
		overrides["output.format"] = string(format)
	}
	if flags.Changed("no-journal") {
		disabled, err := flags.GetBool("no-journal")
		if err != nil {
			return nil, err
		}
		overrides["journal.enabled"] = !disabled
	}
	return overrides, nil
}

// exitCodeFor picks the foundry exit code for a command failure. Errors
// that are not envelopes, such as cobra usage errors, map to ExitFailure.
func exitCodeFor(err error) foundry.ExitCode {
	return apperrors.ExitCodeFromEnvelope(apperrors.EnsureEnvelope(err))
}
