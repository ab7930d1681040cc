package beacon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nurbek-a/driver-dispatch/internal/domain/models"
	"github.com/nurbek-a/driver-dispatch/internal/domain/types"
	"github.com/nurbek-a/driver-dispatch/pkg/keymutex"
	"github.com/nurbek-a/driver-dispatch/pkg/logger"
	wrap "github.com/nurbek-a/driver-dispatch/pkg/logger/wrapper"
	"github.com/nurbek-a/driver-dispatch/pkg/metrics"
	"github.com/nurbek-a/driver-dispatch/pkg/trm"
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

const serviceName = "dispatch"

// minDwell is how long a driver must remain in a state before a
// deactivation is accepted. Activations are never dwell-blocked.
const minDwell = 10 * time.Minute

const workDateLayout = "2006-01-02"

/*
Service is the beacon state machine: it validates driver eligibility,
enforces transition guards against the driver-day work log and appends
activity records. Transitions are append-only; there is no correction path.
*/
type Service struct {
	repos     repos
	geo       GeoIndex
	publisher Publisher
	trm       trm.TxManager
	locks     *keymutex.KeyMutex
	endpoint  string // dispatch websocket endpoint handed to on-duty drivers
	l         logger.Logger
}

type repos struct {
	user    UserRepo
	worklog WorkLogRepo
}

// New returns a new instance of the beacon service with all dependencies injected.
func New(userRepo UserRepo, worklogRepo WorkLogRepo, geo GeoIndex, publisher Publisher, trm trm.TxManager, endpoint string, l logger.Logger) *Service {
	return &Service{
		repos: repos{
			user:    userRepo,
			worklog: worklogRepo,
		},
		geo:       geo,
		publisher: publisher,
		trm:       trm,
		locks:     keymutex.New(),
		endpoint:  endpoint,
		l:         l,
	}
}

// ActivateBeacon processes a driver's on/off-duty declaration and returns
// the dispatch endpoint descriptor when the driver went on duty, or the
// resting sentinel otherwise.
func (s *Service) ActivateBeacon(ctx context.Context, driverID uuid.UUID, status types.BeaconStatus) (models.BeaconResult, error) {
	ctx = wrap.WithAction(ctx, types.ActionActivateBeacon)
	ctx = wrap.WithDriverID(ctx, driverID.String())

	result, err := s.activate(ctx, driverID, status)
	metrics.RecordBeaconTransition(serviceName, status.String(), err)
	return result, err
}

func (s *Service) activate(ctx context.Context, driverID uuid.UUID, status types.BeaconStatus) (models.BeaconResult, error) {
	driver, err := s.repos.user.FindDriverAccount(ctx, driverID)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			return models.BeaconResult{}, wrap.Error(ctx, types.ErrDriverNotFound.WithCause(err))
		}
		return models.BeaconResult{}, wrap.Error(ctx, fmt.Errorf("failed to load driver account: %w", err))
	}
	if !driver.Eligible() {
		return models.BeaconResult{}, wrap.Error(ctx, types.ErrDriverNotEligible)
	}

	now := time.Now()
	active := status.Active()

	// The read-guard-append sequence is not atomic on its own; serialize
	// activations per driver so both of two concurrent calls cannot pass
	// the guards against a stale last activity.
	s.locks.Lock(driverID.String())
	defer s.locks.Unlock(driverID.String())

	fn := func(ctx context.Context) error {
		workLogID, history, err := s.resolveWorkLog(ctx, driverID, now)
		if err != nil {
			return err
		}

		if len(history) > 0 {
			last := history[len(history)-1]

			if last.Active == active && last.Status == status {
				return wrap.Error(ctx, types.ErrDuplicateTransition)
			}
			if now.Sub(last.WorkTime) < minDwell && !active {
				return wrap.Error(ctx, types.ErrDwellTooShort)
			}
		}

		if _, err := s.repos.worklog.InsertActivity(ctx, workLogID, now, active, status); err != nil {
			return wrap.Error(ctx, types.ErrActivityInsertFailed.WithCause(err))
		}

		return nil
	}

	// Execute inside transaction: a failed append never leaves a dangling
	// fresh work log behind.
	err = s.trm.Do(ctx, fn)
	if errors.Is(err, types.ErrWorkLogExists) {
		// Lost the creation race to another replica. The unique violation
		// aborted the first transaction, so the now-existing log can only
		// be read from a fresh one.
		err = s.trm.Do(ctx, fn)
	}
	if err != nil {
		return models.BeaconResult{}, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishBeaconChanged(ctx, models.BeaconChangedMessage{
			DriverID:  driverID,
			Active:    active,
			Status:    status,
			Timestamp: now,
		}); err != nil {
			s.l.Warn(ctx, "failed to publish beacon change", "error", err.Error())
		}
	}

	if !active {
		// An off-duty driver must stop being matched immediately. A failed
		// removal only logs: the index entry decays anyway once location
		// updates stop.
		if s.geo != nil {
			if err := s.geo.RemoveDriver(ctx, driverID); err != nil {
				s.l.Warn(ctx, "failed to remove driver from geo index", "error", err.Error())
			}
		}
		return models.BeaconResult{Active: false, Endpoint: models.RestingEndpoint}, nil
	}
	return models.BeaconResult{
		Active:   true,
		Endpoint: fmt.Sprintf("%s?driver=%s", s.endpoint, driverID),
	}, nil
}

// resolveWorkLog finds today's work log for the driver, creating it lazily
// on the first activation of the day. Returns the work log id and its
// ordered activity history (empty for a fresh log).
func (s *Service) resolveWorkLog(ctx context.Context, driverID uuid.UUID, now time.Time) (uuid.UUID, []models.Activity, error) {
	workDate := now.Format(workDateLayout)

	worklog, err := s.repos.worklog.FindByDriverAndDate(ctx, driverID, workDate)
	if err != nil {
		if !errors.Is(err, types.ErrWorkLogNotFound) {
			return uuid.UUID{}, nil, wrap.Error(ctx, fmt.Errorf("failed to find worklog: %w", err))
		}

		s.l.Info(ctx, "worklog not found, creating new worklog", "work_date", workDate)
		id, err := s.repos.worklog.Create(ctx, driverID, workDate)
		if err != nil {
			// A losing create race aborts the surrounding transaction, so
			// re-reading here would fail too. Surface the sentinel and let
			// the caller retry in a fresh transaction.
			if errors.Is(err, types.ErrWorkLogExists) {
				return uuid.UUID{}, nil, err
			}
			return uuid.UUID{}, nil, wrap.Error(ctx, types.ErrWorkLogCreateFailed.WithCause(err))
		}
		return id, nil, nil
	}

	history, err := s.repos.worklog.ActivitiesByWorkLog(ctx, worklog.ID)
	if err != nil {
		return uuid.UUID{}, nil, wrap.Error(ctx, fmt.Errorf("failed to load activity history: %w", err))
	}

	return worklog.ID, history, nil
}
