package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/nurbek-a/driver-dispatch/internal/domain/models"
	"github.com/nurbek-a/driver-dispatch/internal/domain/types"
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AvailabilityRepo struct {
	db *pgxpool.Pool
}

func NewAvailabilityRepo(db *pgxpool.Pool) *AvailabilityRepo {
	return &AvailabilityRepo{
		db: db,
	}
}

// Upsert writes the current availability/connection binding of a driver.
func (r *AvailabilityRepo) Upsert(ctx context.Context, params models.AvailabilityUpsert) (int64, error) {
	const op = "AvailabilityRepo.Upsert"
	query := `
		INSERT INTO driver_availability(driver_id, connection_id, is_available, status, last_seen_at, updated_at)
		VALUES($1, $2, $3, $4, now(), now())
		ON CONFLICT (driver_id) DO UPDATE SET
			connection_id = EXCLUDED.connection_id,
			is_available  = EXCLUDED.is_available,
			status        = EXCLUDED.status,
			last_seen_at  = now(),
			updated_at    = now()`

	tag, err := r.db.Exec(ctx, query,
		params.DriverID,
		params.ConnectionID,
		params.IsAvailable,
		params.Status,
	)
	if err != nil {
		return 0, fmt.Errorf("%s: %v", op, err)
	}

	return tag.RowsAffected(), nil
}

// Find loads the availability record of a driver.
func (r *AvailabilityRepo) Find(ctx context.Context, driverID uuid.UUID) (*models.DriverAvailability, error) {
	const op = "AvailabilityRepo.Find"
	query := `
		SELECT driver_id, connection_id, is_available, status, last_seen_at, updated_at
		FROM driver_availability
		WHERE driver_id = $1
		LIMIT 1`

	var av models.DriverAvailability
	if err := r.db.QueryRow(ctx, query, driverID).Scan(
		&av.DriverID,
		&av.ConnectionID,
		&av.IsAvailable,
		&av.Status,
		&av.LastSeenAt,
		&av.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrDriverNotFound
		}
		return nil, fmt.Errorf("%s: %v", op, err)
	}

	return &av, nil
}
