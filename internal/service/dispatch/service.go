package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nurbek-a/driver-dispatch/internal/domain/models"
	"github.com/nurbek-a/driver-dispatch/internal/domain/types"
	"github.com/nurbek-a/driver-dispatch/pkg/logger"
	wrap "github.com/nurbek-a/driver-dispatch/pkg/logger/wrapper"
	"github.com/nurbek-a/driver-dispatch/pkg/metrics"
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

const serviceName = "dispatch"

const (
	// nearestLimit is how many candidates the proximity query returns.
	nearestLimit = 3

	// offerTTL bounds how long a pickup offer stays claimable. The driver's
	// acceptance flow must confirm or release the offer before expiry.
	offerTTL = 300 * time.Second
)

var ErrNoRouteOrigin = errors.New("no route origin available")

/*
Service matches a passenger to the nearest available driver. Assignment is
sequential first-available-wins: exactly one offer per broadcast, never a
simultaneous fan-out, so a passenger cannot be double-booked.
*/
type Service struct {
	geo   GeoIndex
	avail AvailabilityRepo
	cache Cache
	gate  ConnGateway
	l     logger.Logger
}

// New returns a new instance of the dispatch matcher.
func New(geo GeoIndex, avail AvailabilityRepo, cache Cache, gate ConnGateway, l logger.Logger) *Service {
	return &Service{
		geo:   geo,
		avail: avail,
		cache: cache,
		gate:  gate,
		l:     l,
	}
}

// BroadcastPickup finds the nearest available driver to the route origin
// and reserves a pickup offer for them. Returns ErrNoNearbyDrivers when no
// candidate in the nearest set is available.
func (s *Service) BroadcastPickup(ctx context.Context, passengerID uuid.UUID, route models.RouteSummary) error {
	ctx = wrap.WithAction(ctx, types.ActionBroadcastPickup)

	route, err := s.resolveRoute(ctx, passengerID, route)
	if err != nil {
		return err
	}

	origin := route.Origin
	candidates, err := s.geo.NearbyDrivers(ctx, origin.Longitude, origin.Latitude, nearestLimit)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to get nearby drivers: %w", err))
	}
	if len(candidates) == 0 {
		s.l.Info(ctx, "no drivers found nearby")
		return wrap.Error(ctx, types.ErrNoNearbyDrivers)
	}

	for _, driverID := range candidates {
		availability, err := s.avail.Find(ctx, driverID)
		if err != nil {
			s.l.Warn(ctx, "driver availability not found", "driver_id", driverID.String(), "error", err.Error())
			continue
		}
		if !availability.IsAvailable {
			s.l.Info(ctx, "driver not available", "driver_id", driverID.String())
			continue
		}

		offer := models.PickupOffer{
			DriverID:     driverID,
			PassengerID:  passengerID,
			RouteSummary: route,
			ConnectionID: availability.ConnectionID,
		}

		// The offer is always persisted: if the push is missed or the
		// connection is down, the next location update redelivers it.
		if err := s.cache.SetEx(ctx, types.PickupOfferKey(driverID), offer, offerTTL); err != nil {
			return wrap.Error(ctx, fmt.Errorf("failed to store pickup offer: %w", err))
		}

		live := s.gate.IsLive(offer.ConnectionID)
		if live {
			if err := s.gate.Push(offer.ConnectionID, types.EventPickupPassenger.String(), models.PickupNotification{
				RouteSummary: offer.RouteSummary,
				PassengerID:  offer.PassengerID,
			}); err != nil {
				s.l.Warn(ctx, "failed to push pickup offer",
					"driver_id", driverID.String(),
					"connection_id", offer.ConnectionID,
					"error", err.Error(),
				)
			}
		} else {
			s.l.Info(ctx, "connection not live, offer stored for redelivery",
				"driver_id", driverID.String(),
				"connection_id", offer.ConnectionID,
			)
		}
		metrics.RecordPickupOffer(serviceName, live)

		// First available wins; remaining candidates are not offered.
		return nil
	}

	s.l.Info(ctx, "no available driver among nearest candidates")
	return wrap.Error(ctx, types.ErrNoNearbyDrivers)
}

// resolveRoute falls back to the passenger's cached route summary when the
// inbound request carries no origin.
func (s *Service) resolveRoute(ctx context.Context, passengerID uuid.UUID, route models.RouteSummary) (models.RouteSummary, error) {
	if route.HasOrigin() {
		return route, nil
	}

	var cached models.RouteSummary
	found, err := s.cache.Get(ctx, types.RouteCacheKey(passengerID), &cached)
	if err != nil {
		return models.RouteSummary{}, wrap.Error(ctx, fmt.Errorf("failed to read cached route: %w", err))
	}
	if !found || !cached.HasOrigin() {
		return models.RouteSummary{}, wrap.Error(ctx, ErrNoRouteOrigin)
	}

	return cached, nil
}
