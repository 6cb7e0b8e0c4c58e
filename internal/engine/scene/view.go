// Package scene draws the streamed map: one textured quad per visible
// chunk plus an optional outline overlay.
package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ViewProjection maps camera-relative world units to clip space for a view
// of viewW x viewH world units centred on the camera.
func ViewProjection(viewW, viewH float64) mgl32.Mat4 {
	hw, hh := float32(viewW/2), float32(viewH/2)
	return mgl32.Ortho2D(-hw, hw, -hh, hh)
}

// Daylight maps day progress in [0, 1) to a brightness factor: full at
// noon, dimmest at midnight.
func Daylight(dayProgress float64) float32 {
	const night = 0.35
	sun := 0.5 - 0.5*math.Cos(2*math.Pi*dayProgress)
	return float32(night + (1-night)*sun)
}
