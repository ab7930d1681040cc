package dispatch

import (
	"context"
	"time"

	"github.com/nurbek-a/driver-dispatch/internal/domain/models"
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

/*=======================Geo Index================================*/

type GeoIndex interface {
	NearbyDrivers(ctx context.Context, longitude, latitude float64, limit int) ([]uuid.UUID, error)
}

/*=================Availability Repository========================*/

type AvailabilityRepo interface {
	Find(ctx context.Context, driverID uuid.UUID) (*models.DriverAvailability, error)
}

/*====================Ephemeral Cache=============================*/

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	SetEx(ctx context.Context, key string, value any, ttl time.Duration) error
}

/*=================Live Connection Gateway========================*/

type ConnGateway interface {
	IsLive(connID string) bool
	Push(connID string, event string, payload any) error
}
