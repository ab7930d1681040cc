package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nurbek-a/driver-dispatch/internal/domain/models"
	"github.com/nurbek-a/driver-dispatch/internal/domain/types"
	"github.com/nurbek-a/driver-dispatch/pkg/postgres"
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WorkLogRepo struct {
	db *pgxpool.Pool
}

func NewWorkLogRepo(db *pgxpool.Pool) *WorkLogRepo {
	return &WorkLogRepo{
		db: db,
	}
}

// FindByDriverAndDate resolves the work log of one driver-day.
func (r *WorkLogRepo) FindByDriverAndDate(ctx context.Context, driverID uuid.UUID, workDate string) (*models.WorkLog, error) {
	const op = "WorkLogRepo.FindByDriverAndDate"
	query := `
		SELECT id, driver_id, work_date, created_at
		FROM work_logs
		WHERE driver_id = $1 AND work_date = $2
		LIMIT 1`

	var wl models.WorkLog
	if err := TxorDB(ctx, r.db).QueryRow(ctx, query, driverID, workDate).Scan(
		&wl.ID,
		&wl.DriverID,
		&wl.WorkDate,
		&wl.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrWorkLogNotFound
		}
		return nil, fmt.Errorf("%s: %v", op, err)
	}

	return &wl, nil
}

// Create inserts an empty work log for the driver-day and returns its id.
func (r *WorkLogRepo) Create(ctx context.Context, driverID uuid.UUID, workDate string) (uuid.UUID, error) {
	const op = "WorkLogRepo.Create"
	query := `
		INSERT INTO work_logs(id, driver_id, work_date, created_at)
		VALUES($1, $2, $3, now())
		RETURNING id`

	id, err := uuid.New()
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("%s: %v", op, err)
	}

	var created uuid.UUID
	if err := TxorDB(ctx, r.db).QueryRow(ctx, query, id, driverID, workDate).Scan(&created); err != nil {
		// Another replica may have created the driver-day log first.
		if postgres.IsUniqueViolation(err) {
			return uuid.UUID{}, types.ErrWorkLogExists
		}
		return uuid.UUID{}, fmt.Errorf("%s: %v", op, err)
	}

	return created, nil
}

// ActivitiesByWorkLog returns the full activity history of a work log,
// ordered by work time ascending. Order is part of the contract: guards are
// evaluated against the last element.
func (r *WorkLogRepo) ActivitiesByWorkLog(ctx context.Context, workLogID uuid.UUID) ([]models.Activity, error) {
	const op = "WorkLogRepo.ActivitiesByWorkLog"
	query := `
		SELECT id, work_log_id, work_time, active, status, created_at
		FROM log_activities
		WHERE work_log_id = $1
		ORDER BY work_time ASC`

	rows, err := TxorDB(ctx, r.db).Query(ctx, query, workLogID)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", op, err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(
			&a.ID,
			&a.WorkLogID,
			&a.WorkTime,
			&a.Active,
			&a.Status,
			&a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: %v", op, err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %v", op, err)
	}

	return activities, nil
}

// InsertActivity appends one activity snapshot. Activities are never
// updated or deleted.
func (r *WorkLogRepo) InsertActivity(ctx context.Context, workLogID uuid.UUID, workTime time.Time, active bool, status types.BeaconStatus) (uuid.UUID, error) {
	const op = "WorkLogRepo.InsertActivity"
	query := `
		INSERT INTO log_activities(id, work_log_id, work_time, active, status, created_at)
		VALUES($1, $2, $3, $4, $5, now())
		RETURNING id`

	id, err := uuid.New()
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("%s: %v", op, err)
	}

	var created uuid.UUID
	if err := TxorDB(ctx, r.db).QueryRow(ctx, query, id, workLogID, workTime, active, status).Scan(&created); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return uuid.UUID{}, types.ErrWorkLogNotFound
		}
		return uuid.UUID{}, fmt.Errorf("%s: %v", op, err)
	}

	return created, nil
}
