package mapbox

import (
	"encoding/json"
	"errors"

	t "github.com/evanhutnik/movesuggest-service/internal/types"
	"github.com/tidwall/gjson"
)

const UnnamedPlace = "Unnamed place"

var ErrMalformedResponse = errors.New("no suggestions found in the response")

// Normalize maps a raw /suggest body into suggestions, preserving provider order.
// Entries without a string name get UnnamedPlace; center is copied byte for byte.
func Normalize(body []byte) ([]t.Suggestion, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedResponse
	}
	raw := gjson.GetBytes(body, "suggestions")
	if !raw.IsArray() {
		return nil, ErrMalformedResponse
	}

	suggestions := make([]t.Suggestion, 0, len(raw.Array()))
	raw.ForEach(func(_, entry gjson.Result) bool {
		suggestions = append(suggestions, t.Suggestion{
			PlaceName: placeName(entry),
			Center:    center(entry),
		})
		return true
	})
	return suggestions, nil
}

func placeName(entry gjson.Result) string {
	name := entry.Get("name")
	if name.Type != gjson.String || name.Str == "" {
		return UnnamedPlace
	}
	return name.Str
}

// center copies the raw value; an absent center stays absent.
func center(entry gjson.Result) json.RawMessage {
	c := entry.Get("center")
	if !c.Exists() {
		return nil
	}
	return json.RawMessage(c.Raw)
}
