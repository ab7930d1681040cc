package types

import (
	"fmt"

	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

// Cache key builders. The key shapes are shared between the matcher (which
// writes offers and claim locks) and the tracker (which reads them).

// IdleClaimKey marks a driver as mid-handling of a pickup offer.
func IdleClaimKey(driverID uuid.UUID) string {
	return fmt.Sprintf("DRIVER:PICKING-PASSENGER:%s", driverID)
}

// PickupOfferKey holds the pending pickup offer for a driver.
func PickupOfferKey(driverID uuid.UUID) string {
	return fmt.Sprintf("PASSENGER:PICKUP:%s", driverID)
}

// RouteCacheKey holds the passenger's last computed route summary.
func RouteCacheKey(passengerID uuid.UUID) string {
	return fmt.Sprintf("USER:ROUTE:%s", passengerID)
}

// TripSampleKey holds the last location sample of a driver on an order.
func TripSampleKey(orderID, driverID uuid.UUID) string {
	return fmt.Sprintf("order:%s:driver:%s", orderID, driverID)
}

// TripDistanceKey is the per-order hash of accumulated distances, one field
// per driver.
func TripDistanceKey(orderID uuid.UUID) string {
	return fmt.Sprintf("order:%s:distance", orderID)
}

// TripSnapshotKey holds the order-scoped distance snapshot for downstream
// consumers.
func TripSnapshotKey(orderID uuid.UUID) string {
	return fmt.Sprintf("trip:%s", orderID)
}
