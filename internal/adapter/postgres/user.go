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

type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		db: db,
	}
}

// FindDriverAccount loads the account of a partner (driver) user. The
// original system resolved this through a dynamic filter object; each filter
// combination is an explicit method here instead.
func (r *UserRepo) FindDriverAccount(ctx context.Context, userID uuid.UUID) (*models.DriverAccount, error) {
	const op = "UserRepo.FindDriverAccount"
	query := `
		SELECT user_id, full_name, mobile_number, email, is_driver, is_verified, is_completed
		FROM users
		WHERE user_id = $1 AND is_driver = true
		LIMIT 1`

	var acc models.DriverAccount
	if err := r.db.QueryRow(ctx, query, userID).Scan(
		&acc.ID,
		&acc.FullName,
		&acc.MobileNumber,
		&acc.Email,
		&acc.IsDriver,
		&acc.IsVerified,
		&acc.IsCompleted,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %v", op, err)
	}

	return &acc, nil
}
