package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidVideoPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"", false},
		{"/creatives/", false},
		{"/creatives/readme.txt", false},
		{"clip", false},
		{"https://example.com/clip.mp4", true},
		{"http://cdn.example.com/stream", true},
		{"/local/clip.mov", true},
		{"/local/CLIP.MKV", true},
		{"/a/b.webm", true},
		{"/a/b.ogg", true},
		{"/a/b.avi", true},
		{"ftp://example.com/clip", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidVideoPath(tt.path))
		})
	}
}

func TestParsePrice(t *testing.T) {
	p := ParsePrice("12.50")
	require.True(t, p.IsNumeric())
	assert.InDelta(t, 12.5, *p.Amount, 1e-9)
	assert.Equal(t, "12.5", p.String())

	p = ParsePrice(" 3 ")
	require.True(t, p.IsNumeric())
	assert.InDelta(t, 3.0, *p.Amount, 1e-9)

	p = ParsePrice("from $5")
	assert.False(t, p.IsNumeric())
	assert.Equal(t, "from $5", p.String())

	assert.True(t, ParsePrice("").IsZero())
	assert.True(t, ParsePrice("   ").IsZero())

	for _, raw := range []string{"NaN", "Inf", "-inf", "infinity", "1e400"} {
		p := ParsePrice(raw)
		assert.False(t, p.IsNumeric(), raw)
		assert.Equal(t, raw, p.Text)
		_, err := json.Marshal(p)
		assert.NoError(t, err, raw)
	}
}

func TestPriceJSON(t *testing.T) {
	type wrapper struct {
		Price Price `json:"price"`
	}

	out, err := json.Marshal(wrapper{Price: NumericPrice(9.99)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":9.99}`, string(out))

	out, err = json.Marshal(wrapper{Price: ParsePrice("on request")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":"on request"}`, string(out))

	out, err = json.Marshal(wrapper{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"price":null}`, string(out))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"price":"42"}`), &w))
	assert.True(t, w.Price.IsNumeric(), "numeric text is coerced the same way as form input")

	require.NoError(t, json.Unmarshal([]byte(`{"price":"n/a"}`), &w))
	assert.Equal(t, "n/a", w.Price.Text)

	require.NoError(t, json.Unmarshal([]byte(`{"price":null}`), &w))
	assert.True(t, w.Price.IsZero())

	require.Error(t, json.Unmarshal([]byte(`{"price":true}`), &w))
}

func TestToggleIDIsAnInvolution(t *testing.T) {
	start := []string{"a", "b"}

	added := ToggleID(start, "c")
	assert.Equal(t, []string{"a", "b", "c"}, added)
	assert.Equal(t, []string{"a", "b"}, start, "input untouched")
	assert.ElementsMatch(t, start, ToggleID(added, "c"))

	removed := ToggleID(start, "a")
	assert.Equal(t, []string{"b"}, removed)
	assert.ElementsMatch(t, start, ToggleID(removed, "a"))

	assert.Equal(t, []string{"x"}, ToggleID(nil, "x"))
}

func TestHasAdminRights(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).HasAdminRights())
	assert.True(t, (&User{Role: RoleUser, IsAdmin: true}).HasAdminRights())
	assert.True(t, (&User{Role: RoleUser, IsMasterAdmin: true}).HasAdminRights())
	assert.False(t, (&User{Role: RoleUser}).HasAdminRights())
}
