package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Price keeps a product price either as a number or as the free text the
// user typed. Exactly one representation is set.
type Price struct {
	Amount *float64
	Text   string
}

// ParsePrice coerces numeric input to a number and keeps anything else as
// text. NaN and infinities stay text since they cannot be encoded as JSON.
func ParsePrice(raw string) Price {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Price{}
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		return NumericPrice(v)
	}
	return Price{Text: raw}
}

// NumericPrice builds a numeric price
func NumericPrice(v float64) Price {
	return Price{Amount: &v}
}

// IsNumeric reports whether the price was stored as a number
func (p Price) IsNumeric() bool {
	return p.Amount != nil
}

// IsZero reports whether no price is set
func (p Price) IsZero() bool {
	return p.Amount == nil && p.Text == ""
}

// String renders the price as the user would see it
func (p Price) String() string {
	if p.Amount != nil {
		return strconv.FormatFloat(*p.Amount, 'f', -1, 64)
	}
	return p.Text
}

// MarshalJSON writes a JSON number, a JSON string, or null
func (p Price) MarshalJSON() ([]byte, error) {
	switch {
	case p.Amount != nil:
		return json.Marshal(*p.Amount)
	case p.Text != "":
		return json.Marshal(p.Text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a number, a string, or null. Strings go through
// ParsePrice so "12.5" becomes numeric no matter which path wrote it.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Price{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ParsePrice(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Price{Amount: &v}
	return nil
}
