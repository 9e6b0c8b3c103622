package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	apperrors "github.com/genelens/genelens/internal/errors"
	"github.com/genelens/genelens/internal/store"
)

func TestHistoryQuery(t *testing.T) {
	cmd := &cobra.Command{Use: "reset"}
	cmd.Flags().Bool("all", false, "")
	cmd.Flags().String("endpoint", "", "")
	cmd.Flags().String("prefix", "", "")
	require.NoError(t, cmd.ParseFlags([]string{"--prefix", " ld. "}))

	query, err := historyQuery(cmd)
	require.NoError(t, err)
	require.Equal(t, store.RequestQuery{Prefix: "ld."}, query)
}

func TestResetResultSummary(t *testing.T) {
	dry := resetResult{Matched: 3, DryRun: true}
	require.Contains(t, dry.summary(store.RequestQuery{All: true}), "Scope: all endpoints")
	require.Contains(t, dry.summary(store.RequestQuery{All: true}), "Would delete 3 entr(ies)")

	done := resetResult{Matched: 3, Deleted: 3}
	summary := done.summary(store.RequestQuery{Endpoint: "lookup.id"})
	require.Contains(t, summary, "Scope: endpoint lookup.id")
	require.Contains(t, summary, "Deleted 3/3 entr(ies)")
}

func TestHistoryResetRequiresConfirmationForAll(t *testing.T) {
	_, err := executeRoot(t, "--config", writeTestConfig(t), "history", "reset", "--all")
	require.Error(t, err)
	require.Contains(t, apperrors.EnsureEnvelope(err).Message, "--all requires --yes")
}
