package types

import (
	"encoding/json"
	"strconv"
)

// Coordinates is a (longitude, latitude) pair, in the order the geocoding provider uses.
type Coordinates struct {
	Longitude float64
	Latitude  float64
}

// String renders the pair as "lng,lat" using the shortest decimal form of each value.
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Longitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Latitude, 'f', -1, 64)
}

// Suggestion carries the provider's center verbatim; it is never decoded or checked.
type Suggestion struct {
	PlaceName string          `json:"place_name"`
	Center    json.RawMessage `json:"center,omitempty"`
}

// Query is everything the caller knows about one keystroke of an address search.
type Query struct {
	Text         string
	SessionToken string
	Proximity    Coordinates
	Origin       Coordinates
}

type SuggestionsResponse struct {
	SessionToken string       `json:"session_token"`
	Suggestions  []Suggestion `json:"suggestions"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SessionResponse struct {
	SessionToken string `json:"session_token"`
}
