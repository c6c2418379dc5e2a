package geo

import (
	"math"

	svcErr "github.com/oggyb/muzz-matcher/internal/errors"
	"github.com/oggyb/muzz-matcher/internal/scoring"
)

// ValidateCoordinates rejects non-finite or out-of-range WGS84 values.
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return svcErr.Invalid("location", "coordinates must be finite numbers")
	}
	if lat < -90 || lat > 90 {
		return svcErr.Invalid("latitude", "must be within [-90, 90]")
	}
	if lon < -180 || lon > 180 {
		return svcErr.Invalid("longitude", "must be within [-180, 180]")
	}
	return nil
}

// DistanceKm is the great-circle distance between two points.
func DistanceKm(a, b scoring.Coordinate) float64 {
	return haversineKM(a.Lat, a.Lon, b.Lat, b.Lon)
}

func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKM = 6371.0

	toRad := func(v float64) float64 { return v * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}
