package ensembl

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLDForVariant(t *testing.T) {
	rec := &requestRecorder{body: `[{
		"population_name": "1000GENOMES:phase_3:KHV",
		"variation1": "rs56116432",
		"variation2": "rs1333049",
		"d_prime": "0.973204",
		"r2": "0.050338"
	}]`}
	client := newTestClient(t, rec.handler)

	got, err := client.LD.ForVariant(context.Background(), LDVariantRequest{
		Species:    "human",
		ID:         "rs56116432",
		Population: PopulationKHV,
		R2:         Float(0.05),
		WindowSize: Int(250),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, PopulationKHV, got[0].PopulationName)
	require.Equal(t, "rs1333049", got[0].Variation2)
	require.Equal(t, "0.050338", got[0].R2)

	u := rec.last(t)
	require.Equal(t, "/ld/human/rs56116432/1000GENOMES:phase_3:KHV", u.Path)
	require.Equal(t, url.Values{
		"attribs":     {"0"},
		"r2":          {"0.05"},
		"window_size": {"250"},
	}, u.Query())
}

func TestLDForVariantWithAttribs(t *testing.T) {
	rec := &requestRecorder{body: `[{
		"population_name": "1000GENOMES:phase_3:CEU",
		"variation": "rs1333049",
		"d_prime": "1.000000",
		"r2": "0.200000",
		"chr": "9",
		"start": 22125504,
		"end": 22125504,
		"strand": 1,
		"consequence_type": "intergenic_variant",
		"clinical_significance": ["risk factor"]
	}]`}
	client := newTestClient(t, rec.handler)

	got, err := client.LD.ForVariant(context.Background(), LDVariantRequest{
		Species:    "human",
		ID:         "rs56116432",
		Population: PopulationCEU,
		Attribs:    true,
		DPrime:     Float(1),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "rs1333049", got[0].Variation)
	require.Equal(t, SeqRegion("9"), got[0].Chr)
	require.Equal(t, int64(22125504), got[0].Start)
	require.Equal(t, []string{"risk factor"}, got[0].ClinicalSignificance)

	q := rec.last(t).Query()
	require.Equal(t, "1", q.Get("attribs"))
	require.Equal(t, "1", q.Get("d_prime"))
	require.False(t, q.Has("window_size"))
}

func TestLDPairwise(t *testing.T) {
	rec := &requestRecorder{body: `[{"population_name":"1000GENOMES:phase_3:YRI","variation1":"rs6792369","variation2":"rs1042779","d_prime":"0.7","r2":"0.3"}]`}
	client := newTestClient(t, rec.handler)

	got, err := client.LD.Pairwise(context.Background(), LDPairwiseRequest{
		Species:    "human",
		ID1:        "rs6792369",
		ID2:        "rs1042779",
		Population: PopulationYRI,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)

	u := rec.last(t)
	require.Equal(t, "/ld/human/pairwise/rs6792369/rs1042779", u.Path)
	require.Equal(t, url.Values{"population_name": {"1000GENOMES:phase_3:YRI"}}, u.Query())
}

func TestLDPairwiseWithoutPopulation(t *testing.T) {
	rec := &requestRecorder{body: `[]`}
	client := newTestClient(t, rec.handler)

	_, err := client.LD.Pairwise(context.Background(), LDPairwiseRequest{Species: "human", ID1: "rs1", ID2: "rs2"})
	require.NoError(t, err)
	require.Empty(t, rec.last(t).RawQuery)
}

func TestLDForRegion(t *testing.T) {
	rec := &requestRecorder{body: `[]`}
	client := newTestClient(t, rec.handler)

	got, err := client.LD.ForRegion(context.Background(), LDRegionRequest{
		Species:    "human",
		Region:     "6:25837556..25843455",
		Population: PopulationGGVPGWF,
		DPrime:     Float(0.5),
		R2:         Float(0.25),
	})
	require.NoError(t, err)
	require.Empty(t, got)

	u := rec.last(t)
	require.Equal(t, "/ld/human/region/6:25837556..25843455/GGVP:GWF", u.Path)
	require.Equal(t, url.Values{"d_prime": {"0.5"}, "r2": {"0.25"}}, u.Query())
}
