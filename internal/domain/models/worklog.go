package models

import (
	"time"

	"github.com/nurbek-a/driver-dispatch/internal/domain/types"
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

// WorkLog is one driver-day of beacon history. Created lazily on the first
// activation of the day; activities are append-only and strictly ordered by
// work time.
type WorkLog struct {
	ID        uuid.UUID
	DriverID  uuid.UUID
	WorkDate  string // calendar date, YYYY-MM-DD
	CreatedAt time.Time
}

// Activity is a timestamped snapshot of the driver's on/off-duty state.
// Immutable once created.
type Activity struct {
	ID        uuid.UUID
	WorkLogID uuid.UUID
	WorkTime  time.Time
	Active    bool
	Status    types.BeaconStatus
	CreatedAt time.Time
}

// BeaconResult is what an accepted beacon transition returns: a dispatch
// endpoint when the driver went on duty, the resting sentinel otherwise.
type BeaconResult struct {
	Active   bool   `json:"active"`
	Endpoint string `json:"endpoint"`
}

// RestingEndpoint is the sentinel returned for an off-duty transition.
const RestingEndpoint = "resting"
