package office

import (
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/pkg/utils"
)

type Office struct {
	Code         string
	Name         string
	Latitude     *float64
	Longitude    *float64
	RadiusMeters float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasCoordinates reports whether the office is geo-provisioned.
func (o Office) HasCoordinates() bool {
	return o.Latitude != nil && o.Longitude != nil
}

// GeofenceResult is the outcome of checking a position against an office.
// Checked is false when the office has no coordinates, in which case the position is always accepted.
type GeofenceResult struct {
	Checked        bool
	DistanceMeters float64
	RadiusMeters   float64
	Within         bool
}

func (o Office) Geofence(lat, lon float64) GeofenceResult {
	if !o.HasCoordinates() {
		return GeofenceResult{Within: true, RadiusMeters: o.RadiusMeters}
	}

	distance := utils.CalculateHaversineDistance(*o.Latitude, *o.Longitude, lat, lon)
	return GeofenceResult{
		Checked:        true,
		DistanceMeters: distance,
		RadiusMeters:   o.RadiusMeters,
		Within:         utils.IsWithinRadius(distance, o.RadiusMeters),
	}
}
