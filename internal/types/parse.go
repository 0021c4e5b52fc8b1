package types

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseCoordinates reads a "lng,lat" pair. No range checking is done.
func ParseCoordinates(s string) (Coordinates, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Coordinates{}, fmt.Errorf("expected 'lng,lat', got %q", s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid longitude %q: %w", parts[0], err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("invalid latitude %q: %w", parts[1], err)
	}
	return Coordinates{Longitude: lng, Latitude: lat}, nil
}
