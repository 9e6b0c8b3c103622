package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/genelens/genelens/ensembl"
)

// queryReader parses optional query parameters, keeping the first error.
// Absent parameters stay nil so they are not forwarded upstream.
type queryReader struct {
	values url.Values
	err    error
}

func newQueryReader(r *http.Request) *queryReader {
	return &queryReader{values: r.URL.Query()}
}

func (q *queryReader) str(key string) string {
	return strings.TrimSpace(q.values.Get(key))
}

func (q *queryReader) flag(key string) *bool {
	raw, ok := q.lookup(key)
	if !ok {
		return nil
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes":
		return ensembl.Bool(true)
	case "0", "false", "no":
		return ensembl.Bool(false)
	}
	q.fail(key, raw, "a boolean (1/0, true/false)")
	return nil
}

func (q *queryReader) float(key string) *float64 {
	raw, ok := q.lookup(key)
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		q.fail(key, raw, "a number")
		return nil
	}
	return ensembl.Float(v)
}

func (q *queryReader) integer(key string) *int {
	raw, ok := q.lookup(key)
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		q.fail(key, raw, "an integer")
		return nil
	}
	return ensembl.Int(v)
}

func (q *queryReader) population(key string) ensembl.Population {
	raw, ok := q.lookup(key)
	if !ok {
		return ""
	}
	p, err := ensembl.PopulationFromInput(raw)
	if err != nil {
		q.fail(key, raw, "a known population")
		return ""
	}
	return p
}

func (q *queryReader) lookup(key string) (string, bool) {
	if !q.values.Has(key) {
		return "", false
	}
	raw := strings.TrimSpace(q.values.Get(key))
	return raw, raw != ""
}

func (q *queryReader) fail(key, raw, want string) {
	if q.err == nil {
		q.err = &paramError{Param: key, Value: raw, Want: want}
	}
}

// paramError reports a request parameter that could not be parsed.
type paramError struct {
	Param string
	Value string
	Want  string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("parameter %s must be %s, got %q", e.Param, e.Want, e.Value)
}

// pathParam returns a required chi URL parameter.
func pathParam(r *http.Request, key string) (string, error) {
	value := strings.TrimSpace(chi.URLParam(r, key))
	if value == "" {
		return "", &paramError{Param: key, Want: "non-empty"}
	}
	return value, nil
}
