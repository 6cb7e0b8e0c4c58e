// Package math provides the small amount of 2D geometry the world streamer needs.
//
// World space is normalized: a level-0 chunk is exactly 1x1 unit. Coordinates
// are float64 because the world is unbounded and float32 loses sub-chunk
// precision a few thousand units from the origin.
package math

import "math"

// Vec2 is a 2D vector in world units.
type Vec2 struct {
	X, Y float64
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Length returns the magnitude.
func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Distance returns the distance to another point.
func (v Vec2) Distance(other Vec2) float64 {
	return v.Sub(other).Length()
}

// IsFinite reports whether both components are finite numbers.
func (v Vec2) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
