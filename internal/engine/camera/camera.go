// Package camera provides the top-down map camera.
package camera

import (
	"math"

	gmath "github.com/Faultbox/terrastream/pkg/math"
)

// MapCamera looks straight down at the world plane. At zoom 1 the viewport
// height spans one world unit; zooming in by 2 halves it.
type MapCamera struct {
	Position gmath.Vec2
	Zoom     float64

	// Constraints
	MinZoom float64
	MaxZoom float64

	// Sensitivity
	ZoomFactor float64 // zoom multiplier per wheel tick
	PanSpeed   float64 // viewport heights per second for keyboard pan

	dragging bool
}

// NewMapCamera creates a camera at the origin with default limits.
func NewMapCamera() *MapCamera {
	return &MapCamera{
		Zoom:       1.0,
		MinZoom:    0.1,
		MaxZoom:    100.0,
		ZoomFactor: 1.1,
		PanSpeed:   1.0,
	}
}

// SetZoom sets the zoom, clamped to [MinZoom, MaxZoom]. Non-finite values
// are ignored.
func (c *MapCamera) SetZoom(z float64) {
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return
	}
	c.Zoom = gmath.Clamp(z, c.MinZoom, c.MaxZoom)
}

// HandleWheel zooms by ZoomFactor per tick; positive ticks zoom in.
func (c *MapCamera) HandleWheel(ticks int) {
	if ticks == 0 {
		return
	}
	c.SetZoom(c.Zoom * math.Pow(c.ZoomFactor, float64(ticks)))
}

// HandleWheelAt zooms like HandleWheel but keeps the world point under the
// cursor fixed on screen.
func (c *MapCamera) HandleWheelAt(ticks, sx, sy, width, height int) {
	before := c.ScreenToWorld(sx, sy, width, height)
	c.HandleWheel(ticks)
	after := c.ScreenToWorld(sx, sy, width, height)
	c.Position = c.Position.Add(before.Sub(after))
}

// BeginDrag starts a mouse drag.
func (c *MapCamera) BeginDrag() { c.dragging = true }

// EndDrag ends a mouse drag.
func (c *MapCamera) EndDrag() { c.dragging = false }

// Dragging reports whether a drag is in progress.
func (c *MapCamera) Dragging() bool { return c.dragging }

// HandleDrag pans by a mouse delta in screen pixels so the world follows the
// cursor. Screen y grows downward, world y grows upward.
func (c *MapCamera) HandleDrag(dx, dy, viewportHeight int) {
	if !c.dragging || viewportHeight <= 0 {
		return
	}
	scale := 1 / (float64(viewportHeight) * c.Zoom)
	c.Position.X -= float64(dx) * scale
	c.Position.Y += float64(dy) * scale
}

// HandleMovement pans from keyboard axes in [-1, 1] over dt seconds. Speed is
// constant in screen space, so it scales with 1/zoom in world units.
func (c *MapCamera) HandleMovement(right, up, dt float64) {
	speed := c.PanSpeed * dt / c.Zoom
	c.Position.X += right * speed
	c.Position.Y += up * speed
}

// ViewSize returns the visible world width and height for a viewport.
func (c *MapCamera) ViewSize(width, height int) (w, h float64) {
	h = 1 / c.Zoom
	if height > 0 {
		w = h * float64(width) / float64(height)
	}
	return w, h
}

// Aspect returns viewport height over width, the ratio the chunk selector
// expects.
func Aspect(width, height int) float64 {
	if width <= 0 {
		return 1
	}
	return float64(height) / float64(width)
}

// ScreenToWorld converts a screen pixel (origin top-left) to world units.
func (c *MapCamera) ScreenToWorld(sx, sy, width, height int) gmath.Vec2 {
	if height <= 0 {
		return c.Position
	}
	scale := 1 / (float64(height) * c.Zoom)
	return gmath.Vec2{
		X: c.Position.X + (float64(sx)-float64(width)/2)*scale,
		Y: c.Position.Y - (float64(sy)-float64(height)/2)*scale,
	}
}
