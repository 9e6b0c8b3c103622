//go:build cgo

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/genelens/genelens/ensembl"
	"github.com/genelens/genelens/internal/config"
)

func openMemoryStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	s, err := Open(ctx, config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(ctx))
	return s
}

func TestOpenMemoryStore(t *testing.T) {
	s := openMemoryStore(t)
	require.Equal(t, "libsql", s.Driver())

	// Migrate is idempotent.
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.CheckHealth(context.Background()))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "postgres", Path: ":memory:"})
	require.ErrorContains(t, err, "unsupported store driver")
}

func TestJournalRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openMemoryStore(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	entries := []RequestEntry{
		{ID: "1", Endpoint: "xrefs.symbol", Path: "/xrefs/symbol/human/BRCA2", StatusCode: 200, DurationMS: 120, StartedAt: base},
		{ID: "2", Endpoint: "xrefs.id", Path: "/xrefs/id/ENSG00000139618", Query: "all_levels=1", StatusCode: 200, DurationMS: 80, StartedAt: base.Add(time.Second)},
		{ID: "3", Endpoint: "ld.region", Path: "/ld/human/region/6:1..2/GGVP:GWF", StatusCode: 400, Error: "bad region", DurationMS: 30, StartedAt: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		require.NoError(t, s.RecordRequest(ctx, e))
	}

	all, err := s.ListRequests(ctx, RequestQuery{All: true})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "3", all[0].ID, "newest first")
	require.Equal(t, "bad region", all[0].Error)
	require.Equal(t, base.Add(2*time.Second), all[0].StartedAt)
	require.Equal(t, "all_levels=1", all[1].Query)

	limited, err := s.ListRequests(ctx, RequestQuery{All: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)

	count, err := s.CountRequests(ctx, RequestQuery{Prefix: "xrefs."})
	require.NoError(t, err)
	require.Equal(t, 2, count)

	deleted, err := s.ResetRequests(ctx, RequestQuery{Endpoint: "xrefs.id"})
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	count, err = s.CountRequests(ctx, RequestQuery{All: true})
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestRecordRequestRequiresID(t *testing.T) {
	s := openMemoryStore(t)
	require.Error(t, s.RecordRequest(context.Background(), RequestEntry{Endpoint: "lookup.id"}))
}

func TestJournalObservesCancelledRequests(t *testing.T) {
	s := openMemoryStore(t)
	journal := NewJournal(s, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	journal.ObserveRequest(ctx, ensembl.RequestRecord{
		ID:        "cancelled",
		Endpoint:  "lookup.id",
		Path:      "/lookup/id/ENSG00000157764",
		StartedAt: time.Now().UTC(),
		Err:       errors.New("context canceled"),
	})

	entries, err := s.ListRequests(context.Background(), RequestQuery{Endpoint: "lookup.id"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Zero(t, entries[0].StatusCode)
	require.Equal(t, "context canceled", entries[0].Error)
}
