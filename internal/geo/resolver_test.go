package geo

import (
	"context"
	"errors"
	"testing"

	"github.com/adeolu/swiftride/internal/config"
	apperrors "github.com/adeolu/swiftride/internal/errors"
)

type fakeGeocoder struct {
	point    Point
	address  string
	err      error
	failures int // fail this many calls before succeeding
	calls    int
}

func (f *fakeGeocoder) Geocode(ctx context.Context, address string) (Point, string, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return Point{}, "", errors.New("upstream timeout")
	}
	if f.err != nil {
		return Point{}, "", f.err
	}
	return f.point, f.address, nil
}

func (f *fakeGeocoder) Route(ctx context.Context, origin, dest Point) (float64, int, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return 0, 0, errors.New("upstream timeout")
	}
	if f.err != nil {
		return 0, 0, f.err
	}
	return 7.5, 18, nil
}

func testConfig() *config.Config {
	cfg, _ := config.Load()
	return cfg
}

func TestResolvePassesThroughCoordinates(t *testing.T) {
	r := NewResolver(nil, nil, testConfig())

	loc, err := r.Resolve(context.Background(), "anywhere", &Point{Lat: 6.45, Lng: 3.39})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if loc.Point.Lat != 6.45 || loc.Point.Lng != 3.39 {
		t.Errorf("coordinates not passed through: %+v", loc.Point)
	}
	if loc.Approximate {
		t.Error("caller-supplied coordinates must not be flagged approximate")
	}
}

func TestResolveOriginCoordinatesAreValid(t *testing.T) {
	r := NewResolver(nil, nil, testConfig())

	loc, err := r.Resolve(context.Background(), "null island", &Point{Lat: 0, Lng: 0})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if loc.Point.Lat != 0 || loc.Point.Lng != 0 {
		t.Errorf("(0, 0) not passed through: %+v", loc.Point)
	}
	if loc.Approximate {
		t.Error("(0, 0) is a real point and must not fall back to the regional default")
	}
}

func TestResolveGeocodesAddress(t *testing.T) {
	gc := &fakeGeocoder{point: Point{Lat: 6.4281, Lng: 3.4219}, address: "Victoria Island, Lagos"}
	r := NewResolver(gc, nil, testConfig())

	loc, err := r.Resolve(context.Background(), "VI Lagos", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if loc.Address != "Victoria Island, Lagos" {
		t.Errorf("expected formatted address, got %q", loc.Address)
	}
	if loc.Approximate {
		t.Error("verified geocode must not be flagged approximate")
	}
}

func TestResolveRetriesOnceThenFallsBack(t *testing.T) {
	gc := &fakeGeocoder{failures: 5}
	r := NewResolver(gc, nil, testConfig())

	loc, err := r.Resolve(context.Background(), "Ikeja, Lagos", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if gc.calls != 2 {
		t.Errorf("expected exactly 2 geocoder attempts, got %d", gc.calls)
	}
	if !loc.Approximate {
		t.Error("regional fallback must be flagged approximate")
	}
	if loc.Point.Lat != 6.5244 || loc.Point.Lng != 3.3792 {
		t.Errorf("expected Lagos fallback coordinates, got %+v", loc.Point)
	}
}

func TestResolveNoResultSkipsRetry(t *testing.T) {
	gc := &fakeGeocoder{err: ErrNoResult}
	r := NewResolver(gc, nil, testConfig())

	if _, err := r.Resolve(context.Background(), "nowhere special", nil); err != apperrors.ErrUnresolvableLocation {
		t.Fatalf("expected ErrUnresolvableLocation, got %v", err)
	}
	if gc.calls != 1 {
		t.Errorf("a definitive empty result should not be retried, got %d calls", gc.calls)
	}
}

func TestResolveUnresolvable(t *testing.T) {
	r := NewResolver(nil, nil, testConfig())

	_, err := r.Resolve(context.Background(), "somewhere far away", nil)
	if err != apperrors.ErrUnresolvableLocation {
		t.Fatalf("expected ErrUnresolvableLocation, got %v", err)
	}
}

func TestDistanceDurationPrimaryPath(t *testing.T) {
	gc := &fakeGeocoder{}
	r := NewResolver(gc, nil, testConfig())

	km, mins, estimated := r.DistanceDuration(context.Background(), Point{Lat: 6.52, Lng: 3.37}, Point{Lat: 6.45, Lng: 3.39}, "car")
	if estimated {
		t.Error("primary path must not be flagged estimated")
	}
	if km != 7.5 || mins != 18 {
		t.Errorf("got %.2f km / %d mins, want 7.5 / 18", km, mins)
	}
}

func TestDistanceDurationFallback(t *testing.T) {
	origin := Point{Lat: 6.5244, Lng: 3.3792}
	dest := Point{Lat: 6.4281, Lng: 3.4219}
	r := NewResolver(nil, nil, testConfig())

	km, mins, estimated := r.DistanceDuration(context.Background(), origin, dest, "car")
	if !estimated {
		t.Error("offline resolver must flag the estimate")
	}
	if km <= 0 || mins <= 0 {
		t.Fatalf("fallback must never produce zero: %.2f km / %d mins", km, mins)
	}

	// Deterministic: identical inputs, identical outputs.
	km2, mins2, _ := r.DistanceDuration(context.Background(), origin, dest, "car")
	if km != km2 || mins != mins2 {
		t.Error("fallback estimate is not deterministic")
	}
}

func TestDistanceDurationFloor(t *testing.T) {
	a := Point{Lat: 6.5244, Lng: 3.3792}
	b := Point{Lat: 6.5246, Lng: 3.3794} // ~30 meters
	r := NewResolver(nil, nil, testConfig())

	_, mins, _ := r.DistanceDuration(context.Background(), a, b, "bicycle")
	if mins < 5 {
		t.Errorf("duration %d below the configured floor", mins)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Lagos Island to Ikeja is roughly 16-20 km great-circle.
	d := HaversineKm(Point{Lat: 6.4550, Lng: 3.3841}, Point{Lat: 6.6018, Lng: 3.3515})
	if d < 14 || d > 22 {
		t.Errorf("HaversineKm = %.2f, expected between 14 and 22", d)
	}
}
