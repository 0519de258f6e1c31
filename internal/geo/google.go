package geo

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

// GoogleGeocoder implements Geocoder against the Google Maps Geocoding and
// Distance Matrix APIs.
type GoogleGeocoder struct {
	client *maps.Client
}

func NewGoogleGeocoder(apiKey string) (*GoogleGeocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleGeocoder{client: client}, nil
}

func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (Point, string, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return Point{}, "", fmt.Errorf("geocode request: %w", err)
	}
	if len(results) == 0 {
		return Point{}, "", ErrNoResult
	}

	loc := results[0].Geometry.Location
	return Point{Lat: loc.Lat, Lng: loc.Lng}, results[0].FormattedAddress, nil
}

func (g *GoogleGeocoder) Route(ctx context.Context, origin, dest Point) (float64, int, error) {
	resp, err := g.client.DistanceMatrix(ctx, &maps.DistanceMatrixRequest{
		Origins:      []string{fmt.Sprintf("%f,%f", origin.Lat, origin.Lng)},
		Destinations: []string{fmt.Sprintf("%f,%f", dest.Lat, dest.Lng)},
		Mode:         maps.TravelModeDriving,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("distance matrix request: %w", err)
	}

	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, 0, ErrNoResult
	}

	elem := resp.Rows[0].Elements[0]
	if elem.Status != "OK" {
		return 0, 0, ErrNoResult
	}

	km := float64(elem.Distance.Meters) / 1000
	mins := int(elem.Duration.Minutes())
	if mins < 1 {
		mins = 1
	}
	return km, mins, nil
}
