package proximity

import (
	"math"

	"github.com/transitpulse/bustracker/internal/models"
)

const (
	earthRadiusMeters = 6371000

	// roadFactor approximates road indirection on top of the great-circle
	// distance when the routing service is unavailable.
	roadFactor = 1.3

	// avgSpeedMS is the assumed average bus speed (~30 km/h).
	avgSpeedMS = 8.33
)

// Haversine returns the great-circle distance between two points in meters.
func Haversine(a, b models.Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMeters * c
}
