package ensembl

import "context"

// LDService covers the linkage disequilibrium endpoints.
type LDService struct {
	client *Client
}

// LDVariantRequest computes LD around a single variant.
type LDVariantRequest struct {
	Species string
	// ID is the variant id, e.g. "rs56116432".
	ID         string
	Population Population
	// Attribs adds chr, start, end, strand, consequence_type and
	// clinical_significance of the paired variant to each result.
	Attribs bool
	// DPrime only returns pairs whose D' is at least this value.
	DPrime *float64
	// R2 only returns pairs whose r-squared is at least this value.
	R2 *float64
	// WindowSize in kb, centered on the variant. Ensembl defaults to and
	// caps at 500.
	WindowSize *int
}

// LDPairwiseRequest computes LD between two variants.
type LDPairwiseRequest struct {
	Species    string
	ID1        string
	ID2        string
	Population Population
	DPrime     *float64
	R2         *float64
}

// LDRegionRequest computes LD between all pairs of variants in a region.
type LDRegionRequest struct {
	Species string
	// Region such as "6:25837556..25843455". At most 500 kb, or 10 kb when
	// overlapping the MHC region.
	Region     string
	Population Population
	DPrime     *float64
	R2         *float64
}

// LD is one linkage disequilibrium value. Plain results fill Variation1 and
// Variation2; results requested with attributes fill Variation and the
// attribute fields instead.
type LD struct {
	PopulationName Population `json:"population_name"`
	DPrime         string     `json:"d_prime"`
	R2             string     `json:"r2"`
	Variation1     string     `json:"variation1,omitempty"`
	Variation2     string     `json:"variation2,omitempty"`

	Variation            string    `json:"variation,omitempty"`
	ConsequenceType      string    `json:"consequence_type,omitempty"`
	Chr                  SeqRegion `json:"chr,omitempty"`
	Start                int64     `json:"start,omitempty"`
	End                  int64     `json:"end,omitempty"`
	Strand               int       `json:"strand,omitempty"`
	ClinicalSignificance []string  `json:"clinical_significance,omitempty"`
}

// ForVariant returns LD values between the variant and every variant in a
// window centered on it.
//
// https://rest.ensembl.org/documentation/info/ld_id_get
func (s *LDService) ForVariant(ctx context.Context, req LDVariantRequest) ([]LD, error) {
	q := newQuery().
		flag("attribs", &req.Attribs).
		num("d_prime", req.DPrime).
		num("r2", req.R2).
		integer("window_size", req.WindowSize)
	path := "/ld/" + req.Species + "/" + req.ID + "/" + string(req.Population)
	return get[[]LD](ctx, s.client, "ld.variant", path, q)
}

// Pairwise returns LD values between two variants.
//
// https://rest.ensembl.org/documentation/info/ld_pairwise_get
func (s *LDService) Pairwise(ctx context.Context, req LDPairwiseRequest) ([]LD, error) {
	q := newQuery().
		num("d_prime", req.DPrime).
		num("r2", req.R2).
		str("population_name", string(req.Population))
	path := "/ld/" + req.Species + "/pairwise/" + req.ID1 + "/" + req.ID2
	return get[[]LD](ctx, s.client, "ld.pairwise", path, q)
}

// ForRegion returns LD values between all pairs of variants in a region.
//
// https://rest.ensembl.org/documentation/info/ld_region_get
func (s *LDService) ForRegion(ctx context.Context, req LDRegionRequest) ([]LD, error) {
	q := newQuery().
		num("d_prime", req.DPrime).
		num("r2", req.R2)
	path := "/ld/" + req.Species + "/region/" + req.Region + "/" + string(req.Population)
	return get[[]LD](ctx, s.client, "ld.region", path, q)
}
