package geo

import (
	"fmt"
	"math"

	"github.com/eaindome/Ride-Booking-server/internal/models"
)

const (
	earthRadiusKm = 6371.0

	// FallbackDistanceKm is returned for coordinates we cannot trust.
	// Callers tolerate an approximate distance; they must not fail a
	// booking over a malformed coordinate.
	FallbackDistanceKm = 5.0

	// AvgSpeedKmh is the flat city-speed assumption behind every ETA
	// estimate. In prod use a routing engine.
	AvgSpeedKmh = 30.0
)

// DistanceKm returns the haversine great-circle distance between a and b
// in kilometers. Invalid coordinates degrade to FallbackDistanceKm.
func DistanceKm(a, b models.Coord) float64 {
	if !valid(a) || !valid(b) {
		return FallbackDistanceKm
	}
	toRad := func(deg float64) float64 { return deg * math.Pi / 180.0 }
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

func valid(c models.Coord) bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lon) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// ParseCoord converts a raw [lon, lat] pair from the wire into a Coord.
// Wrong arity or a non-finite element is a caller error here, unlike
// DistanceKm which silently degrades.
func ParseCoord(pair []float64) (models.Coord, error) {
	if len(pair) != 2 {
		return models.Coord{}, fmt.Errorf("coordinate must have 2 elements, got %d", len(pair))
	}
	c := models.Coord{Lon: pair[0], Lat: pair[1]}
	if !valid(c) {
		return models.Coord{}, fmt.Errorf("coordinate out of range: [%v, %v]", pair[0], pair[1])
	}
	return c, nil
}

// ETAFromDistance renders a trip estimate for km kilometers at the flat
// AvgSpeedKmh as a human string.
func ETAFromDistance(km float64) string {
	mins := int(math.Round(km / AvgSpeedKmh * 60))
	switch {
	case mins < 1:
		return "Less than a minute"
	case mins == 1:
		return "1 minute"
	case mins < 60:
		return fmt.Sprintf("%d minutes", mins)
	}
	h, m := mins/60, mins%60
	out := fmt.Sprintf("%d hour", h)
	if h > 1 {
		out += "s"
	}
	if m == 1 {
		out += " 1 minute"
	} else if m > 1 {
		out += fmt.Sprintf(" %d minutes", m)
	}
	return out
}
