// README: OSRM HTTP provider for the road-distance oracle.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mashwar/internal/types"
)

// OSRMOracle performs route lookups against an OSRM HTTP server.
type OSRMOracle struct {
	endpoint string
	client   *http.Client
}

// NewOSRMOracle creates an oracle for a self-hosted OSRM instance. A zero
// timeout falls back to 2 seconds.
func NewOSRMOracle(endpoint string, timeout time.Duration) *OSRMOracle {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &OSRMOracle{endpoint: endpoint, client: &http.Client{Timeout: timeout}}
}

// RoadDistance queries /route/v1/driving between the two points.
// OSRM wants lng,lat order.
func (o *OSRMOracle) RoadDistance(ctx context.Context, origin, dest types.Point) (RouteEstimate, error) {
	url := fmt.Sprintf("%s/route/v1/driving/%.6f,%.6f;%.6f,%.6f?overview=false",
		o.endpoint, origin.Lng, origin.Lat, dest.Lng, dest.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return RouteEstimate{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return RouteEstimate{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var out struct {
		Routes []struct {
			Distance float64 `json:"distance"` // meters
			Duration float64 `json:"duration"` // seconds
		} `json:"routes"`
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return RouteEstimate{}, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if out.Code != "Ok" || len(out.Routes) == 0 {
		return RouteEstimate{}, fmt.Errorf("%w: osrm no route: %v", ErrUnavailable, out.Code)
	}

	return RouteEstimate{
		DistanceKm: out.Routes[0].Distance / 1000.0,
		Duration:   time.Duration(out.Routes[0].Duration * float64(time.Second)),
	}, nil
}
