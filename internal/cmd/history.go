package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/spf13/cobra"

	apperrors "github.com/genelens/genelens/internal/errors"
	"github.com/genelens/genelens/internal/output"
	"github.com/genelens/genelens/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or prune the local request journal",
	Long: `Every Ensembl request made by the CLI or the gateway is recorded in the local
journal (unless journal.enabled is false or --no-journal is given).`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journaled requests, newest first",
	Example: `  genelens history list --limit 20
  genelens history list --endpoint ld.variant -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := historyQuery(cmd)
		if err != nil {
			return err
		}
		if !query.All && query.Endpoint == "" && query.Prefix == "" {
			query.All = true
		}
		if query.Limit, err = cmd.Flags().GetInt("limit"); err != nil {
			return err
		}
		if err := query.Validate(); err != nil {
			return apperrors.WrapInvalidInput(cmd.Context(), err, err.Error())
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, err := output.ParseFormat(cfg.Output.Format)
		if err != nil {
			return err
		}

		db, err := openStore(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		entries, err := db.ListRequests(cmd.Context(), query)
		if err != nil {
			return apperrors.WrapDatabaseError(cmd.Context(), err, "failed to list journal")
		}
		return writeOutput(cmd, "history", format, entries)
	},
}

var historyResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete journaled requests",
	Example: `  genelens history reset --endpoint xrefs.symbol
  genelens history reset --all --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := historyQuery(cmd)
		if err != nil {
			return err
		}
		if err := query.Validate(); err != nil {
			return apperrors.WrapInvalidInput(cmd.Context(), err, err.Error())
		}

		yes, err := cmd.Flags().GetBool("yes")
		if err != nil {
			return err
		}
		dryRun, err := cmd.Flags().GetBool("dry-run")
		if err != nil {
			return err
		}
		if query.All && !yes && !dryRun {
			err := errors.New("--all requires --yes (or use --dry-run)")
			return apperrors.WrapInvalidInput(cmd.Context(), err, err.Error())
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, err := output.ParseFormat(cfg.Output.Format)
		if err != nil {
			return err
		}

		db, err := openStore(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		matched, err := db.CountRequests(cmd.Context(), query)
		if err != nil {
			return apperrors.WrapDatabaseError(cmd.Context(), err, "failed to count journal entries")
		}

		result := resetResult{Matched: matched, DryRun: dryRun}
		if !dryRun {
			result.Deleted, err = db.ResetRequests(cmd.Context(), query)
			if err != nil {
				return apperrors.WrapDatabaseError(cmd.Context(), err, "failed to reset journal")
			}
		}

		if format == output.FormatTable {
			return writeText(cmd, "history-reset", format, ascii.DrawBox(result.summary(query), 0))
		}
		return writeOutput(cmd, "history-reset", format, result)
	},
}

type resetResult struct {
	Matched int   `json:"matched" yaml:"matched"`
	Deleted int64 `json:"deleted" yaml:"deleted"`
	DryRun  bool  `json:"dry_run" yaml:"dry_run"`
}

func (r resetResult) summary(q store.RequestQuery) string {
	scope := "all endpoints"
	switch {
	case q.Endpoint != "":
		scope = "endpoint " + q.Endpoint
	case q.Prefix != "":
		scope = "endpoints " + q.Prefix + "*"
	}

	lines := []string{"Request Journal", "", "Scope: " + scope}
	if r.DryRun {
		lines = append(lines, fmt.Sprintf("Would delete %d entr(ies)", r.Matched))
	} else {
		lines = append(lines, fmt.Sprintf("Deleted %d/%d entr(ies)", r.Deleted, r.Matched))
	}
	return strings.Join(lines, "\n")
}

func historyQuery(cmd *cobra.Command) (store.RequestQuery, error) {
	flags := &flagReader{cmd: cmd}
	query := store.RequestQuery{
		Endpoint: strings.TrimSpace(flags.str("endpoint")),
		Prefix:   strings.TrimSpace(flags.str("prefix")),
	}
	if cmd.Flags().Lookup("all") != nil {
		all, err := cmd.Flags().GetBool("all")
		flags.keep(err)
		query.All = all
	}
	return query, flags.err
}

func init() {
	for _, c := range []*cobra.Command{historyListCmd, historyResetCmd} {
		c.Flags().Bool("all", false, "Select every endpoint")
		c.Flags().String("endpoint", "", "Select one endpoint (exact match), e.g. ld.variant")
		c.Flags().String("prefix", "", "Select endpoints with matching prefix, e.g. ld.")
	}
	historyListCmd.Flags().Int("limit", 50, "Maximum entries to list (0 for all)")
	historyResetCmd.Flags().Bool("yes", false, "Confirm deleting the whole journal")
	historyResetCmd.Flags().Bool("dry-run", false, "Show what would be deleted")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyResetCmd)
	rootCmd.AddCommand(historyCmd)
}
