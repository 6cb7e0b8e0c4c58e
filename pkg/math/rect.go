package math

// Rect is an axis-aligned rectangle with Y pointing up.
type Rect struct {
	Left, Bottom, Right, Top float64
}

// RectAround returns a rectangle of the given size centred on c.
func RectAround(c Vec2, width, height float64) Rect {
	return Rect{
		Left:   c.X - width/2,
		Bottom: c.Y - height/2,
		Right:  c.X + width/2,
		Top:    c.Y + height/2,
	}
}

// Square returns the rectangle of a square cell with its bottom-left corner at origin.
func Square(origin Vec2, size float64) Rect {
	return Rect{Left: origin.X, Bottom: origin.Y, Right: origin.X + size, Top: origin.Y + size}
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Top - r.Bottom }

// Center returns the midpoint.
func (r Rect) Center() Vec2 {
	return Vec2{(r.Left + r.Right) / 2, (r.Bottom + r.Top) / 2}
}

// Touches reports whether r and other share at least one point.
// Rectangles meeting only along an edge count as touching.
func (r Rect) Touches(other Rect) bool {
	return !(other.Left > r.Right || other.Right < r.Left ||
		other.Bottom > r.Top || other.Top < r.Bottom)
}

// Overlaps reports whether the interiors of r and other intersect.
func (r Rect) Overlaps(other Rect) bool {
	return other.Left < r.Right && other.Right > r.Left &&
		other.Bottom < r.Top && other.Top > r.Bottom
}

// Contains reports whether p lies in r, using half-open bounds [Left, Right) x [Bottom, Top).
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.Left && p.X < r.Right && p.Y >= r.Bottom && p.Y < r.Top
}

// ContainsRect reports whether other lies entirely inside r.
func (r Rect) ContainsRect(other Rect) bool {
	return other.Left >= r.Left && other.Right <= r.Right &&
		other.Bottom >= r.Bottom && other.Top <= r.Top
}
