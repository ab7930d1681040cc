package types

// DispatchEvent names the events pushed to drivers over live connections and
// published to the event stream.
type DispatchEvent string

func (s DispatchEvent) String() string {
	return string(s)
}

const (
	EventPickupPassenger DispatchEvent = "pickup-passenger"
	EventDriverAvailable DispatchEvent = "driver-available"
	EventBeaconChanged   DispatchEvent = "beacon-changed"
)
