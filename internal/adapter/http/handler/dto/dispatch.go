package dto

import (
	"github.com/nurbek-a/driver-dispatch/internal/domain/models"
	"github.com/nurbek-a/driver-dispatch/pkg/uuid"
)

// Coordinate uses pointers so a missing field is distinguishable from zero.
type Coordinate struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (c *Coordinate) validate(field string, errs map[string]string) {
	if c == nil || c.Latitude == nil || c.Longitude == nil {
		errs[field] = "latitude and longitude are required"
		return
	}
	if *c.Latitude < -90 || *c.Latitude > 90 {
		errs[field+".latitude"] = "must be between -90 and 90"
	}
	if *c.Longitude < -180 || *c.Longitude > 180 {
		errs[field+".longitude"] = "must be between -180 and 180"
	}
}

// RouteRequest is the trip the passenger wants matched.
type RouteRequest struct {
	Origin      *Coordinate `json:"origin"`
	Destination *Coordinate `json:"destination"`
	DistanceKm  float64     `json:"distance_km"`
	DurationMin float64     `json:"duration_min"`
}

// PickupRequest asks for the nearest available driver to be offered the
// route. Route is optional; without it the passenger's cached route is used.
type PickupRequest struct {
	PassengerID uuid.UUID     `json:"passenger_id"`
	Route       *RouteRequest `json:"route,omitempty"`
}

func (r PickupRequest) Validate() map[string]string {
	errs := make(map[string]string)

	if r.PassengerID.IsZero() {
		errs["passenger_id"] = "must be provided"
	}
	if r.Route != nil {
		r.Route.Origin.validate("route.origin", errs)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ToModel converts the request route; a zero summary triggers the cached
// route fallback downstream.
func (r PickupRequest) ToModel() models.RouteSummary {
	if r.Route == nil {
		return models.RouteSummary{}
	}

	route := models.RouteSummary{
		DistanceKm:  r.Route.DistanceKm,
		DurationMin: r.Route.DurationMin,
	}
	if r.Route.Origin != nil && r.Route.Origin.Latitude != nil && r.Route.Origin.Longitude != nil {
		route.Origin = models.Location{
			Latitude:  *r.Route.Origin.Latitude,
			Longitude: *r.Route.Origin.Longitude,
		}
	}
	if r.Route.Destination != nil && r.Route.Destination.Latitude != nil && r.Route.Destination.Longitude != nil {
		route.Destination = models.Location{
			Latitude:  *r.Route.Destination.Latitude,
			Longitude: *r.Route.Destination.Longitude,
		}
	}
	return route
}
