package tracking

import (
	"context"
	"time"

	"github.com/nurbek-a/driver-dispatch/internal/domain/models"
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

/*====================Ephemeral Cache=============================*/

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key string, value any) error
	SetEx(ctx context.Context, key string, value any, ttl time.Duration) error
	HIncrByFloat(ctx context.Context, key, field string, delta float64) (float64, error)
}

/*=======================Geo Index================================*/

type GeoIndex interface {
	AddDriverLocation(ctx context.Context, driverID uuid.UUID, latitude, longitude float64) error
}

/*=================Availability Repository========================*/

type AvailabilityRepo interface {
	Upsert(ctx context.Context, params models.AvailabilityUpsert) (int64, error)
}

/*=================Live Connection Gateway========================*/

type ConnGateway interface {
	Push(connID string, event string, payload any) error
}

/*========================Publisher===============================*/

type Publisher interface {
	PublishDriverAvailable(ctx context.Context, msg models.DriverAvailableMessage) error
}
