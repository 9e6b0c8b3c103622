package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/genelens/genelens/ensembl"
	"github.com/genelens/genelens/internal/config"
	apperrors "github.com/genelens/genelens/internal/errors"
)

func TestServerUsesStandardErrorHandlers(t *testing.T) {
	srv := New(config.ServerConfig{Host: "127.0.0.1"}, nil)

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}

	var body apperrors.HTTPErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if body.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected error code NOT_FOUND, got %s", body.Error.Code)
	}
}

// fakeEnsembl records upstream requests and answers with fixed bodies.
type fakeEnsembl struct {
	mu     sync.Mutex
	urls   []*url.URL
	status int
	body   string
}

func (f *fakeEnsembl) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.urls = append(f.urls, r.URL)
	status, body := f.status, f.body
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (f *fakeEnsembl) requests() []*url.URL {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*url.URL(nil), f.urls...)
}

func newGateway(t *testing.T, upstream *fakeEnsembl) http.Handler {
	t.Helper()
	ts := httptest.NewServer(upstream)
	t.Cleanup(ts.Close)

	client, err := ensembl.NewClient(
		ensembl.WithBaseURL(ts.URL),
		ensembl.WithHTTPClient(ts.Client()),
		ensembl.WithRequestsPerSecond(1000),
	)
	require.NoError(t, err)
	return New(config.ServerConfig{Host: "127.0.0.1"}, client).Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestGatewayForwardsEnsemblPaths(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantPath  string
		wantQuery url.Values
	}{
		{
			name:      "xref symbol",
			target:    "/v1/xrefs/symbol/homo_sapiens/BRCA2?external_type=HGNC",
			wantPath:  "/xrefs/symbol/homo_sapiens/BRCA2",
			wantQuery: url.Values{"external_type": {"HGNC"}},
		},
		{
			name:      "xref id all levels",
			target:    "/v1/xrefs/id/ENSG00000157764?all_levels=true",
			wantPath:  "/xrefs/id/ENSG00000157764",
			wantQuery: url.Values{"all_levels": {"1"}},
		},
		{
			name:      "ld variant short population",
			target:    "/v1/ld/human/rs56116432/KHV?window_size=250&r2=0.5",
			wantPath:  "/ld/human/rs56116432/1000GENOMES:phase_3:KHV",
			wantQuery: url.Values{"attribs": {"0"}, "r2": {"0.5"}, "window_size": {"250"}},
		},
		{
			name:      "ld pairwise",
			target:    "/v1/ld/human/pairwise/rs6792369/rs1042779?population_name=YRI",
			wantPath:  "/ld/human/pairwise/rs6792369/rs1042779",
			wantQuery: url.Values{"population_name": {"1000GENOMES:phase_3:YRI"}},
		},
		{
			name:      "ld region",
			target:    "/v1/ld/human/region/6:25837556..25843455/GGVP_GWF?d_prime=1",
			wantPath:  "/ld/human/region/6:25837556..25843455/GGVP:GWF",
			wantQuery: url.Values{"d_prime": {"1"}},
		},
		{
			name:      "lookup",
			target:    "/v1/lookup/id/ENSG00000157764?expand=1&format=condensed",
			wantPath:  "/lookup/id/ENSG00000157764",
			wantQuery: url.Values{"expand": {"1"}, "format": {"condensed"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := &fakeEnsembl{body: `[]`}
			if tt.name == "lookup" {
				upstream.body = `{"id":"ENSG00000157764","seq_region_name":"7"}`
			}
			rec := get(t, newGateway(t, upstream), tt.target)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			reqs := upstream.requests()
			require.Len(t, reqs, 1)
			require.Equal(t, tt.wantPath, reqs[0].Path)
			require.Equal(t, tt.wantQuery, reqs[0].Query())
		})
	}
}

func TestGatewayPassesResponseThrough(t *testing.T) {
	upstream := &fakeEnsembl{body: `[{"id":"ENSG00000139618","type":"gene"}]`}
	rec := get(t, newGateway(t, upstream), "/v1/xrefs/symbol/human/BRCA2")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	require.JSONEq(t, `[{"id":"ENSG00000139618","type":"gene"}]`, rec.Body.String())
}

func TestGatewayMapsUpstreamErrors(t *testing.T) {
	tests := []struct {
		status   int
		wantCode string
		want     int
	}{
		{http.StatusBadRequest, apperrors.CodeInvalidInput, http.StatusBadRequest},
		{http.StatusNotFound, apperrors.CodeNotFound, http.StatusNotFound},
		{http.StatusTooManyRequests, apperrors.CodeRateLimited, http.StatusTooManyRequests},
		{http.StatusInternalServerError, apperrors.CodeExternalService, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			upstream := &fakeEnsembl{status: tt.status, body: `{"error":"upstream says no"}`}
			rec := get(t, newGateway(t, upstream), "/v1/lookup/id/ENSG00000157764")

			require.Equal(t, tt.want, rec.Code)
			var body apperrors.HTTPErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, tt.wantCode, body.Error.Code)
			require.EqualValues(t, tt.status, body.Error.Details["upstream_status"])
		})
	}
}

func TestGatewayRejectsInvalidParameters(t *testing.T) {
	tests := []struct {
		name   string
		target string
		param  string
	}{
		{"bad boolean", "/v1/xrefs/id/ENSG00000157764?all_levels=maybe", "all_levels"},
		{"bad float", "/v1/ld/human/rs1/CEU?r2=high", "r2"},
		{"bad integer", "/v1/ld/human/rs1/CEU?window_size=wide", "window_size"},
		{"unknown population", "/v1/ld/human/rs1/NOPE", "population"},
		{"bad lookup format", "/v1/lookup/id/ENSG00000157764?format=verbose", "format"},
		{"unknown pairwise population", "/v1/ld/human/pairwise/rs1/rs2?population_name=NOPE", "population_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upstream := &fakeEnsembl{body: `[]`}
			rec := get(t, newGateway(t, upstream), tt.target)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var body apperrors.HTTPErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, apperrors.CodeInvalidInput, body.Error.Code)
			require.Equal(t, tt.param, body.Error.Details["param"])
			require.Empty(t, upstream.requests(), "invalid requests must not reach Ensembl")
		})
	}
}

func TestGatewayListsPopulationsLocally(t *testing.T) {
	upstream := &fakeEnsembl{}
	rec := get(t, newGateway(t, upstream), "/v1/ld/populations")

	require.Equal(t, http.StatusOK, rec.Code)
	var body []struct {
		Name string `json:"name"`
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, len(ensembl.Populations()))
	require.Empty(t, upstream.requests())
}

func TestGatewayWithoutClientHasNoEnsemblRoutes(t *testing.T) {
	rec := get(t, New(config.ServerConfig{}, nil).Handler(), "/v1/ld/populations")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
