package ensembl

import "context"

// XrefService covers the cross-reference endpoints.
type XrefService struct {
	client *Client
}

// XrefSymbolRequest looks up an external symbol.
type XrefSymbolRequest struct {
	// Species name or alias, e.g. "human" or "homo_sapiens".
	Species string
	// Symbol or display name of a gene, e.g. "BRCA2".
	Symbol string
	// DBType restricts the search to a database other than core.
	DBType string
	// ExternalType filters by external database, e.g. "HGNC".
	ExternalType string
	// ObjectType filters by feature type, e.g. "gene" or "transcript".
	ObjectType string
}

// XrefSymbol is one Ensembl object linked to a symbol.
type XrefSymbol struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// XrefIDRequest fetches external references for an Ensembl stable ID.
type XrefIDRequest struct {
	// ID is an Ensembl stable ID, e.g. "ENSG00000157764".
	ID string
	// AllLevels also returns references of all linked features
	// (for a gene: its transcripts and translations).
	AllLevels    *bool
	DBType       string
	ExternalType string
	ObjectType   string
	Species      string
}

// XrefID is an external reference of an Ensembl object.
type XrefID struct {
	InfoText      string   `json:"info_text"`
	Version       string   `json:"version"`
	DBName        string   `json:"dbname"`
	DisplayID     string   `json:"display_id"`
	InfoType      string   `json:"info_type"`
	Synonyms      []string `json:"synonyms"`
	DBDisplayName string   `json:"db_display_name"`
	PrimaryID     string   `json:"primary_id"`
	Description   string   `json:"description"`
}

// Symbol returns all Ensembl objects linked to an external symbol: display
// names, synonyms and externally linked references. Transient links are
// followed, so a gene and its transcript may both be returned.
//
// https://rest.ensembl.org/documentation/info/xref_external
func (s *XrefService) Symbol(ctx context.Context, req XrefSymbolRequest) ([]XrefSymbol, error) {
	q := newQuery().
		str("db_type", req.DBType).
		str("external_type", req.ExternalType).
		str("object_type", req.ObjectType)
	return get[[]XrefSymbol](ctx, s.client, "xrefs.symbol", "/xrefs/symbol/"+req.Species+"/"+req.Symbol, q)
}

// ID returns the external references of an Ensembl identifier.
//
// https://rest.ensembl.org/documentation/info/xref_id
func (s *XrefService) ID(ctx context.Context, req XrefIDRequest) ([]XrefID, error) {
	q := newQuery().
		flag("all_levels", req.AllLevels).
		str("db_type", req.DBType).
		str("external_type", req.ExternalType).
		str("object_type", req.ObjectType).
		str("species", req.Species)
	return get[[]XrefID](ctx, s.client, "xrefs.id", "/xrefs/id/"+req.ID, q)
}
