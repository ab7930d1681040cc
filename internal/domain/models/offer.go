package models

import (
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

// RouteSummary describes the trip a passenger requests. Only origin matters
// to the matcher; the rest travels opaquely to the driver.
type RouteSummary struct {
	Origin      Location `json:"origin"`
	Destination Location `json:"destination"`
	DistanceKm  float64  `json:"distance_km,omitempty"`
	DurationMin float64  `json:"duration_min,omitempty"`
}

// HasOrigin reports whether the summary carries a usable origin.
func (r RouteSummary) HasOrigin() bool {
	return r.Origin.Latitude != 0 || r.Origin.Longitude != 0
}

// PickupOffer is a reserved pickup proposal for exactly one driver. Cache
// owned, expires after the offer TTL; absence after expiry is a normal state.
type PickupOffer struct {
	DriverID     uuid.UUID    `json:"driver_id"`
	PassengerID  uuid.UUID    `json:"passenger_id"`
	RouteSummary RouteSummary `json:"route_summary"`
	ConnectionID string       `json:"connection_id"`
}

// PickupNotification is the payload pushed to a driver's live connection.
type PickupNotification struct {
	RouteSummary RouteSummary `json:"route_summary"`
	PassengerID  uuid.UUID    `json:"passenger_id"`
}
