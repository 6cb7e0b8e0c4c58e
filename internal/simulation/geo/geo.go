// Package geo maps planar world coordinates to latitude and longitude.
package geo

import "math"

// WorldScale is the number of world pixels per degree.
const WorldScale = 1000.0

const (
	MinLatitude = -90.0
	MaxLatitude = 90.0
)

// Latitude converts a north-south coordinate to degrees, stopping at the poles.
func Latitude(y float64) float64 {
	return math.Max(MinLatitude, math.Min(MaxLatitude, y/WorldScale))
}

// Longitude converts an east-west coordinate to degrees in [-180, 180).
func Longitude(x float64) float64 {
	deg := math.Mod(x/WorldScale+180, 360)
	if deg < 0 {
		deg += 360
	}
	return deg - 180
}

// LatLon returns Latitude(y) and Longitude(x).
func LatLon(x, y float64) (lat, lon float64) {
	return Latitude(y), Longitude(x)
}
