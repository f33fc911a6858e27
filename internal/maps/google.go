// README: Google Directions provider for the road-distance oracle.
package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"

	"mashwar/internal/types"
)

// GoogleOracle resolves road distance through the Google Directions API.
type GoogleOracle struct {
	client *maps.Client
}

// NewGoogleOracle creates a Google-backed oracle with the given API key.
func NewGoogleOracle(apiKey string) (*GoogleOracle, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleOracle{client: client}, nil
}

// RoadDistance asks for a driving route and reads the first leg of the first
// route. It assumes driving mode.
func (g *GoogleOracle) RoadDistance(ctx context.Context, origin, dest types.Point) (RouteEstimate, error) {
	r := &maps.DirectionsRequest{
		Origin:      fmtLatLng(origin),
		Destination: fmtLatLng(dest),
		Mode:        maps.TravelModeDriving,
		Region:      "EG", // bias results to Egypt
	}

	routes, _, err := g.client.Directions(ctx, r)
	if err != nil {
		return RouteEstimate{}, fmt.Errorf("%w: maps api: %v", ErrUnavailable, err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return RouteEstimate{}, fmt.Errorf("%w: no route found", ErrUnavailable)
	}

	leg := routes[0].Legs[0]
	return RouteEstimate{
		DistanceKm: float64(leg.Distance.Meters) / 1000.0,
		Duration:   leg.Duration,
	}, nil
}

func fmtLatLng(p types.Point) string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}
