package gamma

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Event is the subset of a Gamma event this service consumes. Raw keeps the
// full upstream payload for storage and passthrough endpoints.
type Event struct {
	ID        string  `json:"id"`
	Slug      string  `json:"slug"`
	Title     string  `json:"title"`
	Volume    float64 `json:"volume"`
	Volume24h float64 `json:"volume24hr"`
	Liquidity float64 `json:"liquidity"`
	Tags      []Tag   `json:"tags"`

	Raw json.RawMessage `json:"-"`
}

type Tag struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

// MarketOutcome is the one canonical outcome shape produced by
// ExtractOutcomes. Nothing downstream ever sees the source encoding.
type MarketOutcome struct {
	TokenID   string
	Name      string
	Price     float64
	Volume    *float64
	Liquidity *float64
}

// flexFloat unmarshals a JSON number that Gamma may encode either as a
// number or as a quoted string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}
