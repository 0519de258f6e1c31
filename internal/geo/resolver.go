package geo

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"github.com/adeolu/swiftride/internal/config"
	apperrors "github.com/adeolu/swiftride/internal/errors"
)

// ErrNoResult is returned by a Geocoder when the dependency answered but
// found nothing for the query.
var ErrNoResult = errors.New("geo: no result")

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ResolvedLocation is the resolver output. Approximate marks results produced
// by a regional fallback guess rather than a verified geocode.
type ResolvedLocation struct {
	Address     string `json:"address"`
	Point       Point  `json:"point"`
	Approximate bool   `json:"approximate,omitempty"`
}

// Geocoder is the external geocoding/routing dependency.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Point, string, error)
	Route(ctx context.Context, origin, dest Point) (distanceKm float64, durationMins int, err error)
}

// GeocodeCache stores successful geocode lookups keyed by normalized address.
type GeocodeCache interface {
	GetGeocode(ctx context.Context, address string) (*ResolvedLocation, error)
	SetGeocode(ctx context.Context, address string, loc *ResolvedLocation) error
}

// Resolver turns addresses or raw coordinates into verified points and
// produces distance/duration estimates, degrading to a deterministic
// haversine fallback when the external dependency is unavailable.
type Resolver struct {
	geocoder        Geocoder
	cache           GeocodeCache
	timeout         time.Duration
	fallbackRegions []config.FallbackRegion
	minutesPerKm    map[string]float64
	minDurationMins int
	roadFactor      float64
}

func NewResolver(geocoder Geocoder, cache GeocodeCache, cfg *config.Config) *Resolver {
	return &Resolver{
		geocoder:        geocoder,
		cache:           cache,
		timeout:         cfg.GeocodeTimeout,
		fallbackRegions: cfg.FallbackRegions,
		minutesPerKm: map[string]float64{
			"bicycle":    cfg.MinutesPerKm * 2,
			"motorcycle": cfg.MinutesPerKm * 0.8,
			"car":        cfg.MinutesPerKm,
		},
		minDurationMins: cfg.MinDurationMins,
		roadFactor:      cfg.RoadFactor,
	}
}

// Resolve returns coordinates for an address, or passes through coordinates
// the caller already has (nil coords means none were supplied). The external
// geocoder is tried at most twice (one retry), each call bounded by the
// configured timeout; after that the configured regional table is consulted
// and its matches flagged approximate. Coordinates are never invented
// silently.
func (r *Resolver) Resolve(ctx context.Context, address string, coords *Point) (*ResolvedLocation, error) {
	if coords != nil {
		return &ResolvedLocation{Address: address, Point: *coords}, nil
	}

	address = strings.TrimSpace(address)
	if address == "" {
		return nil, apperrors.ErrUnresolvableLocation
	}

	if r.cache != nil {
		if cached, err := r.cache.GetGeocode(ctx, address); err == nil && cached != nil {
			return cached, nil
		}
	}

	if r.geocoder != nil {
		for attempt := 0; attempt < 2; attempt++ {
			point, formatted, err := r.geocodeOnce(ctx, address)
			if err == nil {
				resolved := &ResolvedLocation{Address: formatted, Point: point}
				if r.cache != nil {
					if err := r.cache.SetGeocode(ctx, address, resolved); err != nil {
						log.Printf("failed to cache geocode result: %v", err)
					}
				}
				return resolved, nil
			}
			if err == ErrNoResult {
				break
			}
		}
	}

	for _, region := range r.fallbackRegions {
		if strings.Contains(strings.ToLower(address), strings.ToLower(region.Keyword)) {
			return &ResolvedLocation{
				Address:     address,
				Point:       Point{Lat: region.Lat, Lng: region.Lng},
				Approximate: true,
			}, nil
		}
	}

	return nil, apperrors.ErrUnresolvableLocation
}

func (r *Resolver) geocodeOnce(ctx context.Context, address string) (Point, string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.geocoder.Geocode(ctx, address)
}

// DistanceDuration returns travel distance and duration between two points.
// The external routing dependency is tried at most twice; on failure the
// great-circle distance scaled by the road factor stands in, with duration
// derived from the per-class speed assumption. The estimated flag reports
// whether the fallback was used. Duration is never below the configured floor.
func (r *Resolver) DistanceDuration(ctx context.Context, origin, dest Point, vehicleClass string) (float64, int, bool) {
	if r.geocoder != nil {
		for attempt := 0; attempt < 2; attempt++ {
			km, mins, err := r.routeOnce(ctx, origin, dest)
			if err == nil {
				if mins < r.minDurationMins {
					mins = r.minDurationMins
				}
				return km, mins, false
			}
			if err == ErrNoResult {
				break
			}
		}
	}

	km := roundKm(HaversineKm(origin, dest) * r.roadFactor)
	perKm, ok := r.minutesPerKm[vehicleClass]
	if !ok {
		perKm = r.minutesPerKm["car"]
	}
	mins := int(math.Round(km * perKm))
	if mins < r.minDurationMins {
		mins = r.minDurationMins
	}
	return km, mins, true
}

func (r *Resolver) routeOnce(ctx context.Context, origin, dest Point) (float64, int, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.geocoder.Route(ctx, origin, dest)
}

// HaversineKm computes the great-circle distance between two points.
func HaversineKm(a, b Point) float64 {
	const earthRadius = 6371 // km

	lat1Rad := a.Lat * math.Pi / 180
	lat2Rad := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadius * c
}

func roundKm(km float64) float64 {
	return math.Round(km*100) / 100
}
