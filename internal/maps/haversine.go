// README: Great-circle provider for development and offline setups.
package maps

import (
	"context"
	"math"

	"mashwar/internal/types"
)

const earthRadiusKm = 6371.0

// HaversineOracle estimates distance as the great-circle arc between the two
// points. It knows nothing about roads, so it is only selected explicitly by
// configuration, never as a fallback for a failing provider.
type HaversineOracle struct{}

func NewHaversineOracle() *HaversineOracle { return &HaversineOracle{} }

func (HaversineOracle) RoadDistance(_ context.Context, origin, dest types.Point) (RouteEstimate, error) {
	return RouteEstimate{DistanceKm: haversineKm(origin.Lat, origin.Lng, dest.Lat, dest.Lng)}, nil
}

// haversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
