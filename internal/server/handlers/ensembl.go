package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/genelens/genelens/ensembl"
	apperrors "github.com/genelens/genelens/internal/errors"
	"github.com/genelens/genelens/internal/observability"
)

// EnsemblHandler exposes the ensembl client over HTTP. Paths and query
// parameters mirror the Ensembl REST API and responses are passed through
// unchanged, so every caller of one gateway shares its rate limiter.
type EnsemblHandler struct {
	client *ensembl.Client
}

// NewEnsemblHandler returns handlers backed by client.
func NewEnsemblHandler(client *ensembl.Client) *EnsemblHandler {
	return &EnsemblHandler{client: client}
}

// XrefSymbol serves GET /v1/xrefs/symbol/{species}/{symbol}.
func (h *EnsemblHandler) XrefSymbol(w http.ResponseWriter, r *http.Request) {
	species, err := pathParam(r, "species")
	if err != nil {
		h.invalid(w, r, err)
		return
	}
	symbol, err := pathParam(r, "symbol")
	if err != nil {
		h.invalid(w, r, err)
		return
	}

	q := newQueryReader(r)
	result, err := h.client.Xrefs.Symbol(r.Context(), ensembl.XrefSymbolRequest{
		Species:      species,
		Symbol:       symbol,
		DBType:       q.str("db_type"),
		ExternalType: q.str("external_type"),
		ObjectType:   q.str("object_type"),
	})
	h.respond(w, r, result, err)
}

// XrefID serves GET /v1/xrefs/id/{id}.
func (h *EnsemblHandler) XrefID(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		h.invalid(w, r, err)
		return
	}

	q := newQueryReader(r)
	req := ensembl.XrefIDRequest{
		ID:           id,
		AllLevels:    q.flag("all_levels"),
		DBType:       q.str("db_type"),
		ExternalType: q.str("external_type"),
		ObjectType:   q.str("object_type"),
		Species:      q.str("species"),
	}
	if q.err != nil {
		h.invalid(w, r, q.err)
		return
	}

	result, err := h.client.Xrefs.ID(r.Context(), req)
	h.respond(w, r, result, err)
}

// LDVariant serves GET /v1/ld/{species}/{id}/{population}.
func (h *EnsemblHandler) LDVariant(w http.ResponseWriter, r *http.Request) {
	species, id, population, err := ldPath(r, "id")
	if err != nil {
		h.invalid(w, r, err)
		return
	}

	q := newQueryReader(r)
	req := ensembl.LDVariantRequest{
		Species:    species,
		ID:         id,
		Population: population,
		DPrime:     q.float("d_prime"),
		R2:         q.float("r2"),
		WindowSize: q.integer("window_size"),
	}
	if attribs := q.flag("attribs"); attribs != nil {
		req.Attribs = *attribs
	}
	if q.err != nil {
		h.invalid(w, r, q.err)
		return
	}

	result, err := h.client.LD.ForVariant(r.Context(), req)
	h.respond(w, r, result, err)
}

// LDPairwise serves GET /v1/ld/{species}/pairwise/{id1}/{id2}.
func (h *EnsemblHandler) LDPairwise(w http.ResponseWriter, r *http.Request) {
	species, err := pathParam(r, "species")
	if err != nil {
		h.invalid(w, r, err)
		return
	}
	id1, err := pathParam(r, "id1")
	if err != nil {
		h.invalid(w, r, err)
		return
	}
	id2, err := pathParam(r, "id2")
	if err != nil {
		h.invalid(w, r, err)
		return
	}

	q := newQueryReader(r)
	req := ensembl.LDPairwiseRequest{
		Species:    species,
		ID1:        id1,
		ID2:        id2,
		Population: q.population("population_name"),
		DPrime:     q.float("d_prime"),
		R2:         q.float("r2"),
	}
	if q.err != nil {
		h.invalid(w, r, q.err)
		return
	}

	result, err := h.client.LD.Pairwise(r.Context(), req)
	h.respond(w, r, result, err)
}

// LDRegion serves GET /v1/ld/{species}/region/{region}/{population}.
func (h *EnsemblHandler) LDRegion(w http.ResponseWriter, r *http.Request) {
	species, region, population, err := ldPath(r, "region")
	if err != nil {
		h.invalid(w, r, err)
		return
	}

	q := newQueryReader(r)
	req := ensembl.LDRegionRequest{
		Species:    species,
		Region:     region,
		Population: population,
		DPrime:     q.float("d_prime"),
		R2:         q.float("r2"),
	}
	if q.err != nil {
		h.invalid(w, r, q.err)
		return
	}

	result, err := h.client.LD.ForRegion(r.Context(), req)
	h.respond(w, r, result, err)
}

// PopulationInfo describes one known LD population.
type PopulationInfo struct {
	Name        ensembl.Population `json:"name"`
	Code        string             `json:"code"`
	Description string             `json:"description"`
}

// LDPopulations serves GET /v1/ld/populations from the built-in table. It
// never calls Ensembl.
func (h *EnsemblHandler) LDPopulations(w http.ResponseWriter, r *http.Request) {
	populations := ensembl.Populations()
	out := make([]PopulationInfo, 0, len(populations))
	for _, p := range populations {
		out = append(out, PopulationInfo{Name: p, Code: p.Code(), Description: p.Description()})
	}
	writeJSON(w, http.StatusOK, out)
}

// LookupID serves GET /v1/lookup/id/{id}.
func (h *EnsemblHandler) LookupID(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		h.invalid(w, r, err)
		return
	}

	q := newQueryReader(r)
	req := ensembl.LookupIDRequest{
		ID:         id,
		DBType:     q.str("db_type"),
		Expand:     q.flag("expand"),
		MANE:       q.flag("mane"),
		Phenotypes: q.flag("phenotypes"),
		Species:    q.str("species"),
		UTR:        q.flag("utr"),
	}
	if format := q.str("format"); format != "" && q.err == nil {
		f, err := ensembl.ParseLookupFormat(format)
		if err != nil {
			q.fail("format", format, "full or condensed")
		}
		req.Format = f
	}
	if q.err != nil {
		h.invalid(w, r, q.err)
		return
	}

	result, err := h.client.Lookup.ID(r.Context(), req)
	h.respond(w, r, result, err)
}

// ldPath reads {species}, the named id segment and {population}.
func ldPath(r *http.Request, idKey string) (string, string, ensembl.Population, error) {
	species, err := pathParam(r, "species")
	if err != nil {
		return "", "", "", err
	}
	id, err := pathParam(r, idKey)
	if err != nil {
		return "", "", "", err
	}
	raw, err := pathParam(r, "population")
	if err != nil {
		return "", "", "", err
	}
	population, err := ensembl.PopulationFromInput(raw)
	if err != nil {
		return "", "", "", &paramError{Param: "population", Value: raw, Want: "a known population"}
	}
	return species, id, population, nil
}

func (h *EnsemblHandler) invalid(w http.ResponseWriter, r *http.Request, err error) {
	envelope := apperrors.WrapInvalidInput(r.Context(), err, err.Error())
	var pe *paramError
	if stderrors.As(err, &pe) {
		if updated, ctxErr := envelope.WithContext(map[string]interface{}{"param": pe.Param}); ctxErr == nil {
			envelope = updated
		}
	}
	respondWithError(w, r, envelope)
}

func (h *EnsemblHandler) respond(w http.ResponseWriter, r *http.Request, result any, err error) {
	if err != nil {
		respondWithError(w, r, apperrors.FromUpstream(r.Context(), err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil && observability.ServerLogger != nil {
		observability.ServerLogger.Warn("Failed to write response", zap.Error(err))
	}
}
