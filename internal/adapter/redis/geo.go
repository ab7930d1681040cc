package redisadapter

import (
	"context"
	"fmt"

	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	driverGeoKey = "DRIVER:LOCATIONS"

	// searchRadiusKm bounds the nearest-driver search. Candidates further
	// away are not worth offering a pickup to.
	searchRadiusKm = 25.0
)

// GeoIndex stores current driver positions in a Redis GEO set. Membership
// here is the source of truth for "currently reachable for dispatch".
type GeoIndex struct {
	client *redis.Client
}

func NewGeoIndex(client *redis.Client) *GeoIndex {
	return &GeoIndex{
		client: client,
	}
}

// AddDriverLocation upserts the driver's position.
func (g *GeoIndex) AddDriverLocation(ctx context.Context, driverID uuid.UUID, latitude, longitude float64) error {
	const op = "GeoIndex.AddDriverLocation"

	if err := g.client.GeoAdd(ctx, driverGeoKey, &redis.GeoLocation{
		Name:      driverID.String(),
		Latitude:  latitude,
		Longitude: longitude,
	}).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RemoveDriver drops the driver from the index, making it unreachable for
// dispatch until the next location update.
func (g *GeoIndex) RemoveDriver(ctx context.Context, driverID uuid.UUID) error {
	const op = "GeoIndex.RemoveDriver"

	if err := g.client.ZRem(ctx, driverGeoKey, driverID.String()).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// NearbyDrivers returns up to limit driver ids around the given point,
// ordered by ascending distance.
func (g *GeoIndex) NearbyDrivers(ctx context.Context, longitude, latitude float64, limit int) ([]uuid.UUID, error) {
	const op = "GeoIndex.NearbyDrivers"

	results, err := g.client.GeoSearch(ctx, driverGeoKey, &redis.GeoSearchQuery{
		Longitude:  longitude,
		Latitude:   latitude,
		Radius:     searchRadiusKm,
		RadiusUnit: "km",
		Sort:       "ASC",
		Count:      limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ids := make([]uuid.UUID, 0, len(results))
	for _, r := range results {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("%s: bad member %q: %w", op, r, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
