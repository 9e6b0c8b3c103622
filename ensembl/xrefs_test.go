package ensembl

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// requestRecorder captures the URL of every request a fake Ensembl receives.
type requestRecorder struct {
	mu   sync.Mutex
	urls []*url.URL
	body string
}

func (rec *requestRecorder) handler(w http.ResponseWriter, r *http.Request) {
	rec.mu.Lock()
	rec.urls = append(rec.urls, r.URL)
	body := rec.body
	rec.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (rec *requestRecorder) last(t *testing.T) *url.URL {
	t.Helper()
	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.NotEmpty(t, rec.urls)
	return rec.urls[len(rec.urls)-1]
}

func TestXrefSymbol(t *testing.T) {
	rec := &requestRecorder{body: `[{"id":"ENSG00000139618","type":"gene"},{"id":"ENST00000380152","type":"transcript"}]`}
	client := newTestClient(t, rec.handler)

	got, err := client.Xrefs.Symbol(context.Background(), XrefSymbolRequest{
		Species:      "homo_sapiens",
		Symbol:       "BRCA2",
		ExternalType: "HGNC",
		ObjectType:   "gene",
	})
	require.NoError(t, err)
	require.Equal(t, []XrefSymbol{
		{ID: "ENSG00000139618", Type: "gene"},
		{ID: "ENST00000380152", Type: "transcript"},
	}, got)

	u := rec.last(t)
	require.Equal(t, "/xrefs/symbol/homo_sapiens/BRCA2", u.Path)
	require.Equal(t, url.Values{
		"external_type": {"HGNC"},
		"object_type":   {"gene"},
	}, u.Query())
}

func TestXrefID(t *testing.T) {
	rec := &requestRecorder{body: `[{
		"primary_id": "HGNC:1101",
		"display_id": "BRCA2",
		"dbname": "HGNC",
		"db_display_name": "HGNC Symbol",
		"synonyms": ["FACD", "FANCD1"],
		"info_type": "DIRECT",
		"info_text": "",
		"version": "0",
		"description": "BRCA2 DNA repair associated"
	}]`}
	client := newTestClient(t, rec.handler)

	got, err := client.Xrefs.ID(context.Background(), XrefIDRequest{
		ID:        "ENSG00000139618",
		AllLevels: Bool(true),
		Species:   "human",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "HGNC:1101", got[0].PrimaryID)
	require.Equal(t, []string{"FACD", "FANCD1"}, got[0].Synonyms)
	require.Equal(t, "HGNC Symbol", got[0].DBDisplayName)

	u := rec.last(t)
	require.Equal(t, "/xrefs/id/ENSG00000139618", u.Path)
	require.Equal(t, "1", u.Query().Get("all_levels"))
	require.Equal(t, "human", u.Query().Get("species"))
	require.False(t, u.Query().Has("db_type"))
}

func TestXrefIDAllLevelsEncoding(t *testing.T) {
	cases := []struct {
		name      string
		allLevels *bool
		want      string
		present   bool
	}{
		{name: "True", allLevels: Bool(true), want: "1", present: true},
		{name: "False", allLevels: Bool(false), want: "0", present: true},
		{name: "Omitted", allLevels: nil, present: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &requestRecorder{body: `[]`}
			client := newTestClient(t, rec.handler)

			_, err := client.Xrefs.ID(context.Background(), XrefIDRequest{ID: "ENSG00000157764", AllLevels: tc.allLevels})
			require.NoError(t, err)

			q := rec.last(t).Query()
			require.Equal(t, tc.present, q.Has("all_levels"))
			require.Equal(t, tc.want, q.Get("all_levels"))
		})
	}
}
