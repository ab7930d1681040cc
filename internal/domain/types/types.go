package types

// BeaconStatus is the driver's declared work intent.
type BeaconStatus string

func (s BeaconStatus) String() string {
	return string(s)
}

const (
	BeaconWork BeaconStatus = "work"
	BeaconRest BeaconStatus = "rest"
)

// Active reports whether the status counts as on duty.
func (s BeaconStatus) Active() bool {
	return s == BeaconWork
}

// AvailabilityStatus is the product-facing driver availability state kept in
// the durable availability record. Distinct from GeoIndex membership, which
// is the dispatch-reachability source of truth.
type AvailabilityStatus string

const (
	AvailabilityOnline  AvailabilityStatus = "online"
	AvailabilityOffline AvailabilityStatus = "offline"
)

// AvailabilityMode selects the side effect of a location update. The source
// system shipped two divergent variants; both are kept behind config.
type AvailabilityMode string

const (
	// AvailabilityModeStore performs the direct availability upsert.
	AvailabilityModeStore AvailabilityMode = "store"
	// AvailabilityModePublish emits a driver-available event instead.
	AvailabilityModePublish AvailabilityMode = "publish"
	// AvailabilityModeBoth does both.
	AvailabilityModeBoth AvailabilityMode = "both"
)

func (m AvailabilityMode) Valid() bool {
	switch m {
	case AvailabilityModeStore, AvailabilityModePublish, AvailabilityModeBoth:
		return true
	default:
		return false
	}
}

// StoresAvailability reports whether the mode includes the durable upsert.
func (m AvailabilityMode) StoresAvailability() bool {
	return m == AvailabilityModeStore || m == AvailabilityModeBoth
}

// PublishesAvailability reports whether the mode includes the event publish.
func (m AvailabilityMode) PublishesAvailability() bool {
	return m == AvailabilityModePublish || m == AvailabilityModeBoth
}
