package utils

import "math"

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000

// CalculateHaversineDistance returns the great-circle distance in meters between two coordinates.
func CalculateHaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// IsWithinRadius reports whether distance lies inside the allowed radius. The boundary counts as inside.
func IsWithinRadius(distance, radius float64) bool {
	return distance <= radius
}

func toRadians(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
