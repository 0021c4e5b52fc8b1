package mapbox

import (
	"encoding/json"
	"testing"

	"github.com/evanhutnik/movesuggest-service/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []types.Suggestion
	}{
		{
			name: "order preserved and fallback applied",
			body: `{"suggestions":[{"name":"Nairobi CBD","center":[36.82,-1.29]},{"name":"","center":[36.80,-1.25]}]}`,
			want: []types.Suggestion{
				{PlaceName: "Nairobi CBD", Center: json.RawMessage(`[36.82,-1.29]`)},
				{PlaceName: "Unnamed place", Center: json.RawMessage(`[36.80,-1.25]`)},
			},
		},
		{
			name: "missing name",
			body: `{"suggestions":[{"center":[1,2]}]}`,
			want: []types.Suggestion{{PlaceName: UnnamedPlace, Center: json.RawMessage(`[1,2]`)}},
		},
		{
			name: "non-string name",
			body: `{"suggestions":[{"name":42,"center":[1,2]}]}`,
			want: []types.Suggestion{{PlaceName: UnnamedPlace, Center: json.RawMessage(`[1,2]`)}},
		},
		{
			name: "out of range coordinates",
			body: `{"suggestions":[{"name":"Nowhere","center":[500,-95,7]}]}`,
			want: []types.Suggestion{{PlaceName: "Nowhere", Center: json.RawMessage(`[500,-95,7]`)}},
		},
		{
			name: "missing center",
			body: `{"suggestions":[{"name":"Westlands"}]}`,
			want: []types.Suggestion{{PlaceName: "Westlands"}},
		},
		{
			name: "string coordinates",
			body: `{"suggestions":[{"name":"Karen","center":["36.7","-1.3"]}]}`,
			want: []types.Suggestion{{PlaceName: "Karen", Center: json.RawMessage(`["36.7","-1.3"]`)}},
		},
		{
			name: "null latitude",
			body: `{"suggestions":[{"name":"Karen","center":[36.7,null]}]}`,
			want: []types.Suggestion{{PlaceName: "Karen", Center: json.RawMessage(`[36.7,null]`)}},
		},
		{
			name: "center as a string",
			body: `{"suggestions":[{"name":"Karen","center":"36.7,-1.3"}]}`,
			want: []types.Suggestion{{PlaceName: "Karen", Center: json.RawMessage(`"36.7,-1.3"`)}},
		},
		{
			name: "null center",
			body: `{"suggestions":[{"name":"Karen","center":null}]}`,
			want: []types.Suggestion{{PlaceName: "Karen", Center: json.RawMessage(`null`)}},
		},
		{
			name: "precision kept",
			body: `{"suggestions":[{"name":"Karen","center":[36.70000000000000000001,-1.3]}]}`,
			want: []types.Suggestion{{PlaceName: "Karen", Center: json.RawMessage(`[36.70000000000000000001,-1.3]`)}},
		},
		{
			name: "empty collection",
			body: `{"suggestions":[]}`,
			want: []types.Suggestion{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize([]byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizedCenterMarshalsVerbatim(t *testing.T) {
	got, err := Normalize([]byte(`{"suggestions":[{"name":"Karen","center":[36.7,null]},{"name":"Westlands"}]}`))
	require.NoError(t, err)

	out, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"place_name":"Karen","center":[36.7,null]},{"place_name":"Westlands"}]`, string(out))
	assert.Contains(t, string(out), `[36.7,null]`)
}

func TestNormalizeMalformed(t *testing.T) {
	bodies := map[string]string{
		"empty object":         `{}`,
		"empty body":           ``,
		"not json":             `<html>bad gateway</html>`,
		"null suggestions":     `{"suggestions":null}`,
		"object suggestions":   `{"suggestions":{"name":"x"}}`,
		"truncated":            `{"suggestions":[{"name":"x"`,
		"top-level json array": `[{"name":"x"}]`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			got, err := Normalize([]byte(body))
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.Empty(t, got)
		})
	}
}
