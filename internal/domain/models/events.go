package models

import (
	"time"

	"github.com/nurbek-a/driver-dispatch/internal/domain/types"
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

// DriverAvailableMessage announces that a driver is reachable for dispatch.
// Published instead of (or alongside) the direct availability upsert,
// depending on the configured availability mode.
type DriverAvailableMessage struct {
	DriverID     uuid.UUID `json:"driver_id"`
	ConnectionID string    `json:"connection_id"`
	Location     Location  `json:"location"`
	Timestamp    time.Time `json:"timestamp"`
}

// BeaconChangedMessage records an accepted work-log transition.
type BeaconChangedMessage struct {
	DriverID  uuid.UUID          `json:"driver_id"`
	Active    bool               `json:"active"`
	Status    types.BeaconStatus `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
}
