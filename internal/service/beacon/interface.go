package beacon

import (
	"context"
	"time"

	"github.com/nurbek-a/driver-dispatch/internal/domain/models"
	"github.com/nurbek-a/driver-dispatch/internal/domain/types"
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

/*=====================User Repository============================*/

type UserRepo interface {
	FindDriverAccount(ctx context.Context, userID uuid.UUID) (*models.DriverAccount, error)
}

/*=================Work Log Repository============================*/

type WorkLogRepo interface {
	FindByDriverAndDate(ctx context.Context, driverID uuid.UUID, workDate string) (*models.WorkLog, error)
	Create(ctx context.Context, driverID uuid.UUID, workDate string) (uuid.UUID, error)
	ActivitiesByWorkLog(ctx context.Context, workLogID uuid.UUID) ([]models.Activity, error)
	InsertActivity(ctx context.Context, workLogID uuid.UUID, workTime time.Time, active bool, status types.BeaconStatus) (uuid.UUID, error)
}

/*=======================Geo Index================================*/

type GeoIndex interface {
	RemoveDriver(ctx context.Context, driverID uuid.UUID) error
}

/*========================Publisher===============================*/

type Publisher interface {
	PublishBeaconChanged(ctx context.Context, msg models.BeaconChangedMessage) error
}
