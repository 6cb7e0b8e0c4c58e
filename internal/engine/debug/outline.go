package debug

import (
	gmath "github.com/Faultbox/terrastream/pkg/math"
)

// AppendRectOutline appends the four edges of r as line-list vertices
// (x, y pairs, 8 vertices) relative to origin and returns the extended slice.
func AppendRectOutline(dst []float32, r gmath.Rect, origin gmath.Vec2) []float32 {
	l := float32(r.Left - origin.X)
	b := float32(r.Bottom - origin.Y)
	rt := float32(r.Right - origin.X)
	t := float32(r.Top - origin.Y)
	return append(dst,
		l, b, rt, b, // bottom
		rt, b, rt, t, // right
		rt, t, l, t, // top
		l, t, l, b, // left
	)
}
