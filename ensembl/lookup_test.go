package ensembl

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

const expandedGeneJSON = `{
	"id": "ENSG00000157764",
	"species": "homo_sapiens",
	"object_type": "Gene",
	"db_type": "core",
	"assembly_name": "GRCh38",
	"seq_region_name": "7",
	"start": 140719327,
	"end": 140924929,
	"strand": -1,
	"version": 14,
	"biotype": "protein_coding",
	"display_name": "BRAF",
	"canonical_transcript": "ENST00000646891.2",
	"source": "ensembl_havana",
	"logic_name": "ensembl_havana_gene_homo_sapiens",
	"Transcript": [{
		"id": "ENST00000646891",
		"Parent": "ENSG00000157764",
		"object_type": "Transcript",
		"seq_region_name": "7",
		"start": 140719327,
		"end": 140924929,
		"strand": -1,
		"is_canonical": 1,
		"display_name": "BRAF-220",
		"Exon": [
			{"id": "ENSE00001924394", "object_type": "Exon", "seq_region_name": 7, "start": 140924566, "end": 140924929, "strand": -1},
			{"id": "ENSE00003683751", "object_type": "Exon", "seq_region_name": 7, "start": 140801412, "end": 140801560, "strand": -1}
		],
		"Translation": {
			"id": "ENSP00000493543",
			"Parent": "ENST00000646891",
			"object_type": "Translation",
			"start": 140734597,
			"end": 140924703,
			"length": 766
		}
	}]
}`

func TestLookupID(t *testing.T) {
	rec := &requestRecorder{body: expandedGeneJSON}
	client := newTestClient(t, rec.handler)

	got, err := client.Lookup.ID(context.Background(), LookupIDRequest{
		ID:     "ENSG00000157764",
		Expand: Bool(true),
		UTR:    Bool(false),
		Format: LookupFormatFull,
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "BRAF", got.DisplayName)
	require.Equal(t, SeqRegion("7"), got.SeqRegionName)
	require.Equal(t, -1, got.Strand)

	require.Len(t, got.Transcript, 1)
	tx := got.Transcript[0]
	require.Equal(t, "ENSG00000157764", tx.Parent)
	require.Equal(t, 1, tx.IsCanonical)
	require.Len(t, tx.Exon, 2)
	require.Equal(t, SeqRegion("7"), tx.Exon[0].SeqRegionName)
	require.NotNil(t, tx.Translation)
	require.Equal(t, int64(766), tx.Translation.Length)

	u := rec.last(t)
	require.Equal(t, "/lookup/id/ENSG00000157764", u.Path)
	require.Equal(t, url.Values{
		"expand": {"1"},
		"format": {"full"},
		"utr":    {"0"},
	}, u.Query())
}

func TestLookupIDOmitsUnsetOptions(t *testing.T) {
	rec := &requestRecorder{body: `{"id":"ENST00000288602","object_type":"Transcript"}`}
	client := newTestClient(t, rec.handler)

	got, err := client.Lookup.ID(context.Background(), LookupIDRequest{ID: "ENST00000288602"})
	require.NoError(t, err)
	require.Equal(t, "Transcript", got.ObjectType)
	require.Empty(t, got.Transcript)
	require.Empty(t, rec.last(t).RawQuery)
}

func TestParseLookupFormat(t *testing.T) {
	f, err := ParseLookupFormat(" Condensed ")
	require.NoError(t, err)
	require.Equal(t, LookupFormatCondensed, f)

	_, err = ParseLookupFormat("verbose")
	require.Error(t, err)
}
