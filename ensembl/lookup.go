package ensembl

import (
	"context"
	"fmt"
	"strings"
)

// LookupService covers the identifier lookup endpoint.
type LookupService struct {
	client *Client
}

// LookupFormat selects how much detail the lookup endpoint emits.
type LookupFormat string

const (
	LookupFormatFull      LookupFormat = "full"
	LookupFormatCondensed LookupFormat = "condensed"
)

// ParseLookupFormat validates a lookup format name.
func ParseLookupFormat(value string) (LookupFormat, error) {
	switch f := LookupFormat(strings.ToLower(strings.TrimSpace(value))); f {
	case LookupFormatFull, LookupFormatCondensed:
		return f, nil
	default:
		return "", fmt.Errorf("ensembl: unsupported lookup format %q", value)
	}
}

// LookupIDRequest finds the species and database of a single identifier.
type LookupIDRequest struct {
	// ID is an Ensembl stable ID, e.g. "ENSG00000157764".
	ID     string
	DBType string
	// Expand includes connected features: for a gene, its transcripts,
	// translations and exons.
	Expand *bool
	Format LookupFormat
	// MANE includes MANE features. Only honored together with Expand.
	MANE *bool
	// Phenotypes includes phenotypes. Only available for genes.
	Phenotypes *bool
	Species    string
	// UTR includes 5' and 3' UTR features. Only honored together with Expand.
	UTR *bool
}

// LookupResult describes a looked up feature.
type LookupResult struct {
	ID                  string       `json:"id"`
	Species             string       `json:"species"`
	ObjectType          string       `json:"object_type"`
	DBType              string       `json:"db_type"`
	AssemblyName        string       `json:"assembly_name"`
	SeqRegionName       SeqRegion    `json:"seq_region_name"`
	Start               int64        `json:"start"`
	End                 int64        `json:"end"`
	Strand              int          `json:"strand"`
	Version             int          `json:"version"`
	LogicName           string       `json:"logic_name"`
	Biotype             string       `json:"biotype"`
	DisplayName         string       `json:"display_name"`
	CanonicalTranscript string       `json:"canonical_transcript"`
	Description         string       `json:"description"`
	Source              string       `json:"source"`
	Transcript          []Transcript `json:"Transcript,omitempty"`
}

// Transcript is a transcript of an expanded gene lookup.
type Transcript struct {
	ID            string       `json:"id"`
	Parent        string       `json:"Parent"`
	Species       string       `json:"species"`
	ObjectType    string       `json:"object_type"`
	DBType        string       `json:"db_type"`
	AssemblyName  string       `json:"assembly_name"`
	SeqRegionName SeqRegion    `json:"seq_region_name"`
	Start         int64        `json:"start"`
	End           int64        `json:"end"`
	Strand        int          `json:"strand"`
	Version       int          `json:"version"`
	LogicName     string       `json:"logic_name"`
	DisplayName   string       `json:"display_name"`
	Source        string       `json:"source"`
	Biotype       string       `json:"biotype"`
	IsCanonical   int          `json:"is_canonical"`
	Exon          []Exon       `json:"Exon,omitempty"`
	Translation   *Translation `json:"Translation,omitempty"`
}

// Exon is an exon of an expanded transcript.
type Exon struct {
	ID            string    `json:"id"`
	Species       string    `json:"species"`
	ObjectType    string    `json:"object_type"`
	DBType        string    `json:"db_type"`
	AssemblyName  string    `json:"assembly_name"`
	SeqRegionName SeqRegion `json:"seq_region_name"`
	Start         int64     `json:"start"`
	End           int64     `json:"end"`
	Strand        int       `json:"strand"`
	Version       int       `json:"version"`
}

// Translation is the protein product of an expanded transcript.
type Translation struct {
	ID         string `json:"id"`
	Parent     string `json:"Parent"`
	Species    string `json:"species"`
	ObjectType string `json:"object_type"`
	DBType     string `json:"db_type"`
	Start      int64  `json:"start"`
	End        int64  `json:"end"`
	Length     int64  `json:"length"`
	Version    int    `json:"version"`
}

// ID finds the species and database for a single identifier, e.g. a gene,
// transcript or protein.
//
// https://rest.ensembl.org/documentation/info/lookup
func (s *LookupService) ID(ctx context.Context, req LookupIDRequest) (*LookupResult, error) {
	q := newQuery().
		str("db_type", req.DBType).
		flag("expand", req.Expand).
		str("format", string(req.Format)).
		flag("mane", req.MANE).
		flag("phenotypes", req.Phenotypes).
		str("species", req.Species).
		flag("utr", req.UTR)
	return get[*LookupResult](ctx, s.client, "lookup.id", "/lookup/id/"+req.ID, q)
}
