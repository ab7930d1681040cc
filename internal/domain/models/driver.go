package models

import (
	"time"

	"github.com/nurbek-a/driver-dispatch/internal/domain/types"
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

// DriverAccount is the durable driver identity record. The core only reads
// it; registration and document checks live in the user service.
type DriverAccount struct {
	ID           uuid.UUID
	FullName     string
	MobileNumber string
	Email        string
	IsDriver     bool // partner account flag
	IsVerified   bool // documents checked
	IsCompleted  bool // onboarding finished
}

// Eligible reports whether the driver may toggle the beacon.
func (d *DriverAccount) Eligible() bool {
	return d.IsVerified && d.IsCompleted
}

// DriverAvailability is the current availability/connection-binding record,
// upserted on every location update.
type DriverAvailability struct {
	DriverID     uuid.UUID
	IsAvailable  bool
	Status       types.AvailabilityStatus
	ConnectionID string // bound live-connection identifier
	LastSeenAt   time.Time
	UpdatedAt    time.Time
}

// AvailabilityUpsert carries the fields a location update writes.
type AvailabilityUpsert struct {
	DriverID     uuid.UUID
	IsAvailable  bool
	Status       types.AvailabilityStatus
	ConnectionID string
}

// PositionAck confirms an accepted location sample.
type PositionAck struct {
	DriverID  uuid.UUID `json:"driver_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	UpdatedAt time.Time `json:"updated_at"`
}
