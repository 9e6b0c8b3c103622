package ensembl

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeqRegionUnmarshal(t *testing.T) {
	var v struct {
		A SeqRegion `json:"a"`
		B SeqRegion `json:"b"`
		C SeqRegion `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"X","b":17,"c":null}`), &v))
	require.Equal(t, SeqRegion("X"), v.A)
	require.Equal(t, SeqRegion("17"), v.B)
	require.Empty(t, v.C)

	require.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
}
