// internal/estimator/geo/geo.go
package geo

import "math"

// earthRadiusMiles is the mean Earth radius used by every distance cut.
const earthRadiusMiles = 3958.8

// HaversineMiles returns the great-circle distance in miles between two
// coordinate pairs.
func HaversineMiles(lat1, lon1, lat2, lon2 float64) float64 {
	dlat := toRadians(lat2 - lat1)
	dlon := toRadians(lon2 - lon1)

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMiles * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
