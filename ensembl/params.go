package ensembl

import (
	"net/url"
	"strconv"
)

// Bool returns a pointer to v, for optional request fields.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v, for optional request fields.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for optional request fields.
func Float(v float64) *float64 { return &v }

// query builds Ensembl query strings. Unset optional fields are omitted and
// booleans are sent as 1/0.
type query struct {
	values url.Values
}

func newQuery() query {
	return query{values: url.Values{}}
}

func (q query) str(key, v string) query {
	if v != "" {
		q.values.Set(key, v)
	}
	return q
}

func (q query) flag(key string, v *bool) query {
	if v != nil {
		q.values.Set(key, boolToInt(*v))
	}
	return q
}

func (q query) num(key string, v *float64) query {
	if v != nil {
		q.values.Set(key, strconv.FormatFloat(*v, 'f', -1, 64))
	}
	return q
}

func (q query) integer(key string, v *int) query {
	if v != nil {
		q.values.Set(key, strconv.Itoa(*v))
	}
	return q
}

func boolToInt(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
