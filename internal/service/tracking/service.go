package tracking

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/nurbek-a/driver-dispatch/internal/domain/models"
	"github.com/nurbek-a/driver-dispatch/internal/domain/types"
	"github.com/nurbek-a/driver-dispatch/pkg/logger"
	wrap "github.com/nurbek-a/driver-dispatch/pkg/logger/wrapper"
	"github.com/nurbek-a/driver-dispatch/pkg/metrics"
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

const serviceName = "dispatch"

// sampleTTL bounds how long a trip location sample stays valid as the
// baseline for the next distance delta. An expired baseline restarts
// accumulation at delta zero, which is a normal state.
const sampleTTL = 60 * time.Second

/*
Service handles the per-driver location stream: dispatch-reachability
updates (GeoIndex + availability), pending-offer redelivery, and the
incremental per-order trip distance accumulator.
*/
type Service struct {
	cache     Cache
	geo       GeoIndex
	avail     AvailabilityRepo
	gate      ConnGateway
	publisher Publisher
	mode      types.AvailabilityMode
	l         logger.Logger
}

// New returns a new instance of the tracking service.
func New(cache Cache, geo GeoIndex, avail AvailabilityRepo, gate ConnGateway, publisher Publisher, mode types.AvailabilityMode, l logger.Logger) *Service {
	return &Service{
		cache:     cache,
		geo:       geo,
		avail:     avail,
		gate:      gate,
		publisher: publisher,
		mode:      mode,
		l:         l,
	}
}

// LocationUpdate processes one streamed position sample from a driver's
// live session. Rejected with ErrDriverMidClaim while the driver is
// handling a pickup offer; otherwise updates GeoIndex and availability and
// redelivers any pending offer.
func (s *Service) LocationUpdate(ctx context.Context, driverID uuid.UUID, connID string, latitude, longitude float64) (models.PositionAck, error) {
	ctx = wrap.WithAction(ctx, types.ActionLocationUpdate)
	ctx = wrap.WithDriverID(ctx, driverID.String())

	// A driver mid-claim must not be repositioned back into dispatch
	// eligibility until the claim lock expires.
	claimed, err := s.cache.Exists(ctx, types.IdleClaimKey(driverID))
	if err != nil {
		return models.PositionAck{}, wrap.Error(ctx, fmt.Errorf("failed to check idle-claim lock: %w", err))
	}
	if claimed {
		return models.PositionAck{}, wrap.Error(ctx, types.ErrDriverMidClaim)
	}

	s.redeliverPendingOffer(ctx, driverID, connID)

	if err := s.geo.AddDriverLocation(ctx, driverID, latitude, longitude); err != nil {
		return models.PositionAck{}, wrap.Error(ctx, fmt.Errorf("failed to update driver location: %w", err))
	}

	if s.mode.StoresAvailability() {
		if _, err := s.avail.Upsert(ctx, models.AvailabilityUpsert{
			DriverID:     driverID,
			IsAvailable:  true,
			Status:       types.AvailabilityOnline,
			ConnectionID: connID,
		}); err != nil {
			return models.PositionAck{}, wrap.Error(ctx, fmt.Errorf("failed to upsert driver availability: %w", err))
		}
	}

	if s.mode.PublishesAvailability() && s.publisher != nil {
		if err := s.publisher.PublishDriverAvailable(ctx, models.DriverAvailableMessage{
			DriverID:     driverID,
			ConnectionID: connID,
			Location:     models.Location{Latitude: latitude, Longitude: longitude},
			Timestamp:    time.Now(),
		}); err != nil {
			s.l.Warn(ctx, "failed to publish driver-available event", "error", err.Error())
		}
	}

	return models.PositionAck{
		DriverID:  driverID,
		Latitude:  latitude,
		Longitude: longitude,
		UpdatedAt: time.Now(),
	}, nil
}

// redeliverPendingOffer pushes a stored pickup offer to the driver's
// current connection. This is the recovery path for offers made while the
// driver's connection was not live; failures only log, the offer stays
// claimable until its TTL.
func (s *Service) redeliverPendingOffer(ctx context.Context, driverID uuid.UUID, connID string) {
	var offer models.PickupOffer
	found, err := s.cache.Get(ctx, types.PickupOfferKey(driverID), &offer)
	if err != nil {
		s.l.Warn(ctx, "failed to read pending offer", "error", err.Error())
		return
	}
	if !found {
		return
	}

	s.l.Info(ctx, "pending pickup offer found, redelivering",
		"passenger_id", offer.PassengerID.String(),
	)
	if err := s.gate.Push(connID, types.EventPickupPassenger.String(), models.PickupNotification{
		RouteSummary: offer.RouteSummary,
		PassengerID:  offer.PassengerID,
	}); err != nil {
		s.l.Warn(ctx, "failed to redeliver pickup offer", "error", err.Error())
	}
}

// TripTracker accumulates travel distance for an (order, driver) pair from
// streamed samples and returns the running total in kilometres, rounded to
// two decimals. Any storage failure short-circuits; no partial state is
// returned.
func (s *Service) TripTracker(ctx context.Context, orderID, driverID uuid.UUID, latitude, longitude float64) (float64, error) {
	ctx = wrap.WithAction(ctx, types.ActionTripTracker)
	ctx = wrap.WithDriverID(ctx, driverID.String())
	ctx = wrap.WithOrderID(ctx, orderID.String())

	total, err := s.track(ctx, orderID, driverID, latitude, longitude)
	metrics.RecordTripSample(serviceName, err)
	return total, err
}

func (s *Service) track(ctx context.Context, orderID, driverID uuid.UUID, latitude, longitude float64) (float64, error) {
	sampleKey := types.TripSampleKey(orderID, driverID)

	var prev models.TripSample
	found, err := s.cache.Get(ctx, sampleKey, &prev)
	if err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("failed to read previous sample: %w", err))
	}

	// First sample of the window contributes zero distance.
	var delta float64
	if found {
		delta = HaversineKm(prev.Latitude, prev.Longitude, latitude, longitude)
	}

	total, err := s.cache.HIncrByFloat(ctx, types.TripDistanceKey(orderID), driverID.String(), delta)
	if err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("failed to accumulate distance: %w", err))
	}

	current := models.TripSample{Latitude: latitude, Longitude: longitude}
	if err := s.cache.SetEx(ctx, sampleKey, current, sampleTTL); err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("failed to store current sample: %w", err))
	}

	rounded := math.Round(total*100) / 100

	snapshot := models.TripDistanceSnapshot{
		DriverID: driverID,
		Distance: fmt.Sprintf("%.2f", rounded),
	}
	if err := s.cache.Set(ctx, types.TripSnapshotKey(orderID), snapshot); err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("failed to store distance snapshot: %w", err))
	}

	return rounded, nil
}
