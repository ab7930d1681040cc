package dto

import (
	"github.com/nurbek-a/driver-dispatch/internal/domain/types"
)

// BeaconRequest is a driver's on/off-duty declaration.
type BeaconRequest struct {
	Status string `json:"status"`
}

func (r BeaconRequest) Validate() map[string]string {
	errs := make(map[string]string)

	switch types.BeaconStatus(r.Status) {
	case types.BeaconWork, types.BeaconRest:
	default:
		errs["status"] = "must be one of: work, rest"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (r BeaconRequest) ToStatus() types.BeaconStatus {
	return types.BeaconStatus(r.Status)
}
