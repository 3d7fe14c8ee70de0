package filter

import "math"

// Mean Earth radius in miles.
const earthRadiusMiles = 3958.8

// HaversineMiles computes the great-circle distance between two coordinates.
// Symmetric in its arguments and exactly zero for identical points.
func HaversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	if lat1 == lat2 && lng1 == lng2 {
		return 0
	}

	lat1Rad := degreesToRadians(lat1)
	lat2Rad := degreesToRadians(lat2)
	deltaLat := degreesToRadians(lat2 - lat1)
	deltaLng := degreesToRadians(lng2 - lng1)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}
