// Package geo provides great-circle distance helpers used by the tracker and
// the location pipeline.
package geo

import (
	"math"
	"time"

	"github.com/paulmach/orb"

	"github.com/rapidaid/livetracker/internal/core/domain"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the Haversine formula.
	EarthRadiusKm = 6371.0

	kmToMiles       = 0.621371
	averageSpeedKmh = 40.0 // city traffic average
)

// DistanceKm returns the great-circle distance in kilometres between two
// points given in decimal degrees, using the Haversine formula:
//
//	a = sin²(Δlat/2) + cos(lat1)·cos(lat2)·sin²(Δlng/2)
//	c = 2·atan2(√a, √(1−a))
//	d = R·c
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degreesToRadians(lat1))*math.Cos(degreesToRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Distance is DistanceKm for two coordinates.
func Distance(a, b domain.Coordinate) float64 {
	return DistanceKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

// KmToMiles converts kilometres to statute miles.
func KmToMiles(km float64) float64 {
	return km * kmToMiles
}

// EstimateTravelTime returns the expected travel time for a distance,
// assuming an average city speed of 40 km/h. Rounded to the nearest minute.
func EstimateTravelTime(km float64) time.Duration {
	if km <= 0 {
		return 0
	}
	minutes := math.Round(km / averageSpeedKmh * 60)
	return time.Duration(minutes) * time.Minute
}

// Point converts a coordinate to an orb point ([lng, lat] order).
func Point(c domain.Coordinate) orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// Path returns the straight route between two coordinates as a line string.
func Path(from, to domain.Coordinate) orb.LineString {
	return orb.LineString{Point(from), Point(to)}
}

func degreesToRadians(d float64) float64 {
	return d * math.Pi / 180.0
}
