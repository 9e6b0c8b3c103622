package cmd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/genelens/genelens/internal/config"
	errwrap "github.com/genelens/genelens/internal/errors"
	"github.com/genelens/genelens/internal/metrics"
	"github.com/genelens/genelens/internal/observability"
	"github.com/genelens/genelens/internal/server"
	"github.com/genelens/genelens/internal/server/handlers"
)

// limiterBacklogSeconds is how many seconds of queued work the readiness
// probe tolerates before reporting the limiter as unhealthy.
const limiterBacklogSeconds = 60

// signalHealthChecker implements HealthChecker for signal system
type signalHealthChecker struct{}

func (s signalHealthChecker) CheckHealth(ctx context.Context) error {
	return nil // Signal handlers are registered before the listener starts
}

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

// identityHealthChecker validates app identity metadata
type identityHealthChecker struct {
	binaryName string
	envPrefix  string
	configName string
}

func (i identityHealthChecker) CheckHealth(ctx context.Context) error {
	switch {
	case i.binaryName == "":
		return errwrap.NewConfigInvalidError("app identity missing binary name")
	case i.envPrefix == "":
		return errwrap.NewConfigInvalidError("app identity missing env prefix")
	case i.configName == "":
		return errwrap.NewConfigInvalidError("app identity missing config name")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local Ensembl gateway",
	Long: `Start an HTTP gateway that forwards /v1 requests to Ensembl through one
shared rate limiter, so several local tools can share the Ensembl quota.

Routes mirror the Ensembl REST paths:
  GET /v1/xrefs/symbol/{species}/{symbol}
  GET /v1/xrefs/id/{id}
  GET /v1/ld/{species}/{id}/{population}
  GET /v1/ld/{species}/pairwise/{id1}/{id2}
  GET /v1/ld/{species}/region/{region}/{population}
  GET /v1/ld/populations
  GET /v1/lookup/id/{id}

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Re-read and validate the config file`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides, err := serveOverrides(cmd)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(cmd, overrides)
		if err != nil {
			return err
		}

		identity := GetAppIdentity()
		namespace := identity.TelemetryNamespace()

		observability.InitServerLogger(identity.BinaryName, cfg.Logging.Level, namespace)

		if cfg.Metrics.Enabled {
			if err := observability.InitMetrics(identity.BinaryName, cfg.Metrics.Port, namespace); err != nil {
				observability.ServerLogger.Error("Failed to initialize metrics",
					zap.Error(err))
				return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
			}
		}

		sess, err := openSession(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer sess.Close()

		observability.ServerLogger.Info("Initializing gateway",
			zap.String("service", identity.BinaryName),
			zap.String("namespace", namespace),
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
			zap.Int("metrics_port", observability.GetMetricsPort()),
			zap.Bool("journal", sess.journal != nil))

		handlers.InitHealthManager(versionInfo.Version)
		hm := handlers.GetHealthManager()
		hm.RegisterChecker("signal_handlers", signalHealthChecker{})
		if cfg.Metrics.Enabled {
			hm.RegisterChecker("telemetry", telemetryHealthChecker{})
		}
		hm.RegisterChecker("app_identity", identityHealthChecker{
			binaryName: identity.BinaryName,
			envPrefix:  identity.EnvPrefix,
			configName: identity.ConfigName,
		})
		hm.RegisterChecker("ensembl_limiter", handlers.LimiterChecker{
			Limiter:   sess.client.Limiter(),
			MaxQueued: cfg.Ensembl.RequestsPerSecond * limiterBacklogSeconds,
		})
		if sess.journal != nil {
			hm.RegisterChecker("journal", sess.journal)
		}

		handlers.SetAppIdentity(identity)
		handlers.SetUpstreamInfo(handlers.UpstreamInfo{
			BaseURL:           sess.client.BaseURL(),
			RequestsPerSecond: cfg.Ensembl.RequestsPerSecond,
		})

		srv := server.New(cfg.Server, sess.client)
		metrics.SetServerStartTime(time.Now().Unix())

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout == 0 {
			shutdownTimeout = 10 * time.Second
		}

		// Register graceful shutdown handlers (LIFO order - last registered, first executed)
		// Handler 1: Flush logger (executed last)
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Flushing logger...")
			if err := observability.ServerLogger.Sync(); err != nil {
				// Sync errors are often benign (stdout/stderr already closed)
				observability.ServerLogger.Warn("Logger sync returned error (may be benign)",
					zap.Error(err))
			}
			_ = observability.ClientLogger.Sync()
			return nil
		})

		// Handler 2: Shutdown HTTP server (executed first)
		signals.OnShutdown(func(ctx context.Context) error {
			observability.ServerLogger.Info("Shutting down HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.WrapInternal(ctx, err, "server shutdown failed")
			}

			observability.ServerLogger.Info("HTTP server stopped gracefully")
			return nil
		})

		// SIGHUP re-validates the config file. The limiter and upstream client
		// are fixed for the life of the process.
		signals.OnReload(func(ctx context.Context) error {
			observability.ServerLogger.Info("Received SIGHUP: reloading config")
			reloaded, err := config.LoadFile(ctx, cfgFile, overrides)
			if err != nil {
				observability.ServerLogger.Error("Failed to reload config", zap.Error(err))
				return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
			}
			if reloaded.Ensembl != cfg.Ensembl || reloaded.Server != cfg.Server {
				observability.ServerLogger.Warn("Ensembl and server settings changed; restart to apply",
					zap.String("file", reloaded.Source))
			}
			observability.ServerLogger.Info("Configuration reloaded",
				zap.String("file", reloaded.Source))
			return nil
		})

		// Enable double-tap force quit (Ctrl+C within 2 seconds)
		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			observability.ServerLogger.Warn("Failed to enable double-tap force quit",
				zap.Error(err))
		}

		errChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		go func() {
			if err := signals.Listen(cmd.Context()); err != nil {
				observability.ServerLogger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		if err := <-errChan; err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "server error")
		}

		return nil
	},
}

// serveOverrides maps explicitly set --host and --port onto config keys.
func serveOverrides(cmd *cobra.Command) (map[string]any, error) {
	overrides := map[string]any{}
	if cmd.Flags().Changed("host") {
		host, err := cmd.Flags().GetString("host")
		if err != nil {
			return nil, err
		}
		overrides["server.host"] = host
	}
	if cmd.Flags().Changed("port") {
		port, err := cmd.Flags().GetInt("port")
		if err != nil {
			return nil, err
		}
		overrides["server.port"] = port
	}
	return overrides, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "localhost", "server host (default from config)")
	serveCmd.Flags().IntP("port", "p", 8080, "server port (default from config)")
}
