package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/adeolu/swiftride/internal/geo"
	"github.com/redis/go-redis/v9"
)

const (
	driverActiveRideKey = "driver:active:"
	riderActiveRideKey  = "rider:active:"
	geocodeKeyPrefix    = "geocode:"
	activeRideTTL       = 6 * time.Hour
	defaultGeocodeTTL   = 24 * time.Hour
)

// RideCache is a best-effort Redis index of active rides and resolved
// addresses. The database stays the source of truth; cache misses fall
// through to it.
type RideCache interface {
	SetDriverActiveRide(ctx context.Context, driverID, rideID string) error
	GetDriverActiveRide(ctx context.Context, driverID string) (string, error)
	ClearDriverActiveRide(ctx context.Context, driverID string) error
	SetRiderActiveRide(ctx context.Context, riderID, rideID string) error
	GetRiderActiveRide(ctx context.Context, riderID string) (string, error)
	ClearRiderActiveRide(ctx context.Context, riderID string) error

	// GeocodeCache
	GetGeocode(ctx context.Context, address string) (*geo.ResolvedLocation, error)
	SetGeocode(ctx context.Context, address string, loc *geo.ResolvedLocation) error
}

type rideCache struct {
	redis      *redis.Client
	geocodeTTL time.Duration
}

func NewRideCache(redisClient *redis.Client, geocodeTTL time.Duration) RideCache {
	if geocodeTTL <= 0 {
		geocodeTTL = defaultGeocodeTTL
	}
	return &rideCache{redis: redisClient, geocodeTTL: geocodeTTL}
}

func (c *rideCache) SetDriverActiveRide(ctx context.Context, driverID, rideID string) error {
	return c.redis.Set(ctx, driverActiveRideKey+driverID, rideID, activeRideTTL).Err()
}

func (c *rideCache) GetDriverActiveRide(ctx context.Context, driverID string) (string, error) {
	rideID, err := c.redis.Get(ctx, driverActiveRideKey+driverID).Result()
	if err == redis.Nil {
		return "", nil
	}
	return rideID, err
}

func (c *rideCache) ClearDriverActiveRide(ctx context.Context, driverID string) error {
	return c.redis.Del(ctx, driverActiveRideKey+driverID).Err()
}

func (c *rideCache) SetRiderActiveRide(ctx context.Context, riderID, rideID string) error {
	return c.redis.Set(ctx, riderActiveRideKey+riderID, rideID, activeRideTTL).Err()
}

func (c *rideCache) GetRiderActiveRide(ctx context.Context, riderID string) (string, error) {
	rideID, err := c.redis.Get(ctx, riderActiveRideKey+riderID).Result()
	if err == redis.Nil {
		return "", nil
	}
	return rideID, err
}

func (c *rideCache) ClearRiderActiveRide(ctx context.Context, riderID string) error {
	return c.redis.Del(ctx, riderActiveRideKey+riderID).Err()
}

func (c *rideCache) GetGeocode(ctx context.Context, address string) (*geo.ResolvedLocation, error) {
	data, err := c.redis.Get(ctx, geocodeKey(address)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var loc geo.ResolvedLocation
	if err := json.Unmarshal(data, &loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

func (c *rideCache) SetGeocode(ctx context.Context, address string, loc *geo.ResolvedLocation) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, geocodeKey(address), data, c.geocodeTTL).Err()
}

func geocodeKey(address string) string {
	return geocodeKeyPrefix + strings.ToLower(strings.TrimSpace(address))
}
