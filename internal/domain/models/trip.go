package models

import (
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

// TripSample is the most recent location seen for an (order, driver) pair.
// Cache owned with a short TTL; it is the baseline for the next distance
// delta. An expired sample simply restarts accumulation at delta zero.
type TripSample struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// TripDistanceSnapshot is the order-scoped running total written for
// downstream consumers after every accepted sample.
type TripDistanceSnapshot struct {
	DriverID uuid.UUID `json:"driver_id"`
	Distance string    `json:"distance"` // km, rounded to 2 decimals
}
