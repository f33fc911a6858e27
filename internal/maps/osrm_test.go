package maps

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mashwar/internal/types"
)

func TestOSRMOracle_RoadDistance(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"code":"Ok","routes":[{"distance":10500.0,"duration":840.0}]}`)
	}))
	defer srv.Close()

	o := NewOSRMOracle(srv.URL, time.Second)
	est, err := o.RoadDistance(context.Background(),
		types.Point{Lat: 30.7167, Lng: 31.2622},
		types.Point{Lat: 30.9333, Lng: 31.2833})
	if err != nil {
		t.Fatalf("road distance: %v", err)
	}

	if math.Abs(est.DistanceKm-10.5) > 0.0001 {
		t.Errorf("DistanceKm = %f, want 10.5", est.DistanceKm)
	}
	if est.Duration != 14*time.Minute {
		t.Errorf("Duration = %v, want 14m", est.Duration)
	}
	// OSRM takes lng,lat pairs
	wantPath := "/route/v1/driving/31.262200,30.716700;31.283300,30.933300"
	if gotPath != wantPath {
		t.Errorf("path = %s, want %s", gotPath, wantPath)
	}
}

func TestOSRMOracle_NoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":"NoRoute","routes":[]}`)
	}))
	defer srv.Close()

	o := NewOSRMOracle(srv.URL, time.Second)
	_, err := o.RoadDistance(context.Background(), types.Point{Lat: 1, Lng: 1}, types.Point{Lat: 2, Lng: 2})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestOSRMOracle_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer srv.Close()

	o := NewOSRMOracle(srv.URL, time.Second)
	_, err := o.RoadDistance(context.Background(), types.Point{Lat: 1, Lng: 1}, types.Point{Lat: 2, Lng: 2})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestOSRMOracle_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	o := NewOSRMOracle(srv.URL, 100*time.Millisecond)
	_, err := o.RoadDistance(context.Background(), types.Point{Lat: 1, Lng: 1}, types.Point{Lat: 2, Lng: 2})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
