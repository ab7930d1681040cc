package dto

import (
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

// Inbound websocket message shapes for the driver stream. The stream
// multiplexes two message kinds distinguished by the "event" field.

const (
	WSEventLocationUpdate = "location-update"
	WSEventTripTracker    = "trip-tracker"
)

// LocationUpdateMessage is a streamed position sample.
type LocationUpdateMessage struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (m LocationUpdateMessage) Validate() map[string]string {
	errs := make(map[string]string)
	(&Coordinate{Latitude: m.Latitude, Longitude: m.Longitude}).validate("location", errs)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// TripTrackerMessage is a streamed sample bound to an active order.
type TripTrackerMessage struct {
	OrderID   uuid.UUID `json:"order_id"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
}

func (m TripTrackerMessage) Validate() map[string]string {
	errs := make(map[string]string)
	if m.OrderID.IsZero() {
		errs["order_id"] = "must be provided"
	}
	(&Coordinate{Latitude: m.Latitude, Longitude: m.Longitude}).validate("location", errs)
	if len(errs) == 0 {
		return nil
	}
	return errs
}
