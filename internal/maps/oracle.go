// README: Road-distance oracle interface shared by all routing providers.
package maps

import (
	"context"
	"errors"
	"time"

	"mashwar/internal/types"
)

// ErrUnavailable wraps every provider failure: network errors, timeouts,
// malformed bodies, and "no route found". Callers must treat it as
// "distance unknown", never as zero kilometres.
var ErrUnavailable = errors.New("route oracle unavailable")

// RouteEstimate is the result of a road-distance lookup. Duration is an
// optional hint and stays zero when the provider does not report one.
type RouteEstimate struct {
	DistanceKm float64
	Duration   time.Duration
}

// Oracle resolves the driving distance between two points.
type Oracle interface {
	RoadDistance(ctx context.Context, origin, dest types.Point) (RouteEstimate, error)
}
