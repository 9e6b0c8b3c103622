package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/genelens/genelens/ensembl"
	"github.com/genelens/genelens/internal/config"
)

func TestBuildLibsqlDSN(t *testing.T) {
	t.Run("URLUsesRawValue", func(t *testing.T) {
		cfg := config.StoreConfig{
			URL:       "libsql://example.turso.io",
			AuthToken: "token123",
		}

		dsn, err := buildLibsqlDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, "libsql://example.turso.io?authToken=token123", dsn)
	})

	t.Run("URLWithExistingQuery", func(t *testing.T) {
		cfg := config.StoreConfig{
			URL:       "libsql://example.turso.io?foo=bar",
			AuthToken: "token123",
		}

		dsn, err := buildLibsqlDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, "libsql://example.turso.io?authToken=token123&foo=bar", dsn)
	})

	t.Run("PathWithFilePrefix", func(t *testing.T) {
		cfg := config.StoreConfig{Path: "file:./genelens.db"}

		dsn, err := buildLibsqlDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, "file:./genelens.db", dsn)
	})

	t.Run("PlainPathCreatesDirectory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "genelens.db")

		dsn, err := buildLibsqlDSN(config.StoreConfig{Path: path})
		require.NoError(t, err)
		require.Equal(t, "file:"+path, dsn)
		require.DirExists(t, filepath.Dir(path))
	})

	t.Run("PathMissing", func(t *testing.T) {
		_, err := buildLibsqlDSN(config.StoreConfig{})
		require.Error(t, err)
	})

	t.Run("MemoryPath", func(t *testing.T) {
		dsn, err := buildLibsqlDSN(config.StoreConfig{Path: ":memory:"})
		require.NoError(t, err)
		require.Equal(t, ":memory:", dsn)
	})
}

func TestRequestQueryWhereClause(t *testing.T) {
	cases := []struct {
		name  string
		query RequestQuery
		where string
		args  []any
		err   bool
	}{
		{name: "All", query: RequestQuery{All: true}, where: ""},
		{name: "Endpoint", query: RequestQuery{Endpoint: " ld.region "}, where: "WHERE endpoint = ?", args: []any{"ld.region"}},
		{name: "Prefix", query: RequestQuery{Prefix: "xrefs."}, where: "WHERE endpoint LIKE ?", args: []any{"xrefs.%"}},
		{name: "EndpointWinsOverPrefix", query: RequestQuery{Endpoint: "lookup.id", Prefix: "ld."}, where: "WHERE endpoint = ?", args: []any{"lookup.id"}},
		{name: "Empty", query: RequestQuery{}, err: true},
		{name: "BlankPrefix", query: RequestQuery{Prefix: "   "}, err: true},
		{name: "NegativeLimit", query: RequestQuery{All: true, Limit: -1}, err: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			where, args, err := tc.query.whereClause()
			if tc.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.where, where)
			require.Equal(t, tc.args, args)
		})
	}
}

func TestEntryFromRecord(t *testing.T) {
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := EntryFromRecord(ensembl.RequestRecord{
		ID:         "abc",
		Endpoint:   "ld.variant",
		Path:       "/ld/human/rs56116432/1000GENOMES:phase_3:CEU",
		Query:      "attribs=0",
		StatusCode: 503,
		StartedAt:  started,
		Duration:   1500 * time.Millisecond,
		Err:        errors.New("service unavailable"),
	})

	require.Equal(t, "abc", entry.ID)
	require.Equal(t, int64(1500), entry.DurationMS)
	require.Equal(t, "service unavailable", entry.Error)
	require.Equal(t, started, entry.StartedAt)
}

func TestNilStore(t *testing.T) {
	var s *Store
	require.NoError(t, s.Close())
	require.Empty(t, s.Driver())
	require.ErrorIs(t, s.Migrate(context.Background()), errNotInitialized)
	require.ErrorIs(t, s.CheckHealth(context.Background()), errNotInitialized)
}
