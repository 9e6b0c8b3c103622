package ensembl

import (
	"bytes"
	"encoding/json"
)

// SeqRegion is a sequence region name such as "6" or "X". Ensembl emits it
// as a JSON string on some endpoints and as a number on others.
type SeqRegion string

// UnmarshalJSON accepts both a JSON string and a JSON number.
func (s *SeqRegion) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = SeqRegion(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = SeqRegion(n.String())
	return nil
}
