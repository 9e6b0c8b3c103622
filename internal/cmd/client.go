package cmd

import (
	"context"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/genelens/genelens/ensembl"
	"github.com/genelens/genelens/internal/config"
	apperrors "github.com/genelens/genelens/internal/errors"
	"github.com/genelens/genelens/internal/metrics"
	"github.com/genelens/genelens/internal/observability"
	"github.com/genelens/genelens/internal/output"
	"github.com/genelens/genelens/internal/store"
)

// session holds what one command invocation needs to talk to Ensembl.
type session struct {
	cfg     *config.Config
	client  *ensembl.Client
	journal *store.Store
}

// newSession loads configuration and builds the shared ensembl client. The
// journal is best-effort: if the store cannot be opened the command still
// runs, unjournaled.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openSession(cmd.Context(), cfg)
}

// openSession builds the client and journal for an already loaded config.
func openSession(ctx context.Context, cfg *config.Config) (*session, error) {
	s := &session{cfg: cfg}
	opts := clientOptions(cfg)

	if cfg.Journal.Enabled {
		db, err := openStore(ctx, cfg.Store)
		if err != nil {
			observability.CLILogger.Warn("Request journal unavailable, continuing without it",
				zap.Error(err))
		} else {
			s.journal = db
			opts = append(opts, ensembl.WithObserver(store.NewJournal(db, observability.ClientLogger)))
		}
	}

	client, err := ensembl.NewClient(opts...)
	if err != nil {
		s.Close()
		return nil, apperrors.WrapConfigInvalid(ctx, err, "failed to create ensembl client")
	}
	s.client = client
	return s, nil
}

// clientOptions translates the ensembl config section into client options.
func clientOptions(cfg *config.Config) []ensembl.Option {
	opts := []ensembl.Option{
		ensembl.WithBaseURL(cfg.Ensembl.BaseURL),
		ensembl.WithRequestsPerSecond(cfg.Ensembl.RequestsPerSecond),
		ensembl.WithHTTPClient(&http.Client{Timeout: cfg.Ensembl.Timeout}),
		ensembl.WithLogger(observability.ClientLogger),
		ensembl.WithObserver(metrics.Upstream{}),
	}
	if ua := strings.TrimSpace(cfg.Ensembl.UserAgent); ua != "" {
		opts = append(opts, ensembl.WithUserAgent(ua))
	}
	return opts
}

// Close releases the journal store.
func (s *session) Close() {
	if s.journal == nil {
		return
	}
	if err := s.journal.Close(); err != nil {
		observability.CLILogger.Warn("Failed to close journal store", zap.Error(err))
	}
}

// render writes value in the configured output format to --out or stdout.
func (s *session) render(cmd *cobra.Command, name string, value any) error {
	format, err := output.ParseFormat(s.cfg.Output.Format)
	if err != nil {
		return err
	}
	return writeOutput(cmd, name, format, value)
}
