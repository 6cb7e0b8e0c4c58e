// Package chunk defines the identity and payload of one streamed world region.
package chunk

import (
	"fmt"
	"math"

	gmath "github.com/Faultbox/terrastream/pkg/math"
)

// MaxLevel is the deepest LOD a key may address. Beyond it a tile's size
// underflows the precision of its integer grid coordinates.
const MaxLevel = 62

// Key identifies a chunk: grid coordinates at a level of detail.
// Level 0 tiles are 1x1 world units; each level halves the side length.
type Key struct {
	X     int
	Y     int
	Level int
}

// Size returns the side length of the tile in world units.
func (k Key) Size() float64 {
	return math.Ldexp(1, -k.Level)
}

// Origin returns the bottom-left corner of the tile in world units.
func (k Key) Origin() gmath.Vec2 {
	s := k.Size()
	return gmath.Vec2{X: float64(k.X) * s, Y: float64(k.Y) * s}
}

// Bounds returns the tile rectangle in world units.
func (k Key) Bounds() gmath.Rect {
	return gmath.Square(k.Origin(), k.Size())
}

// Children returns the four sub-tiles at Level+1 in canonical order.
func (k Key) Children() [4]Key {
	cx, cy, l := k.X*2, k.Y*2, k.Level+1
	return [4]Key{
		{cx, cy, l},
		{cx + 1, cy, l},
		{cx, cy + 1, l},
		{cx + 1, cy + 1, l},
	}
}

// Parent returns the tile one level up. The parent of a level-0 key is itself.
func (k Key) Parent() Key {
	if k.Level == 0 {
		return k
	}
	return Key{floorDiv2(k.X), floorDiv2(k.Y), k.Level - 1}
}

// Contains reports whether other is k or lies inside k's region.
func (k Key) Contains(other Key) bool {
	if other.Level < k.Level {
		return false
	}
	shift := uint(other.Level - k.Level)
	return other.X>>shift == k.X && other.Y>>shift == k.Y
}

// Validate reports whether the key can address a tile.
func (k Key) Validate() error {
	if k.Level < 0 || k.Level > MaxLevel {
		return fmt.Errorf("chunk key %v: level %d out of range [0, %d]", k, k.Level, MaxLevel)
	}
	return nil
}

// MustValidate panics if the key is invalid. Passing an invalid key is a
// programming error, never a runtime condition.
func (k Key) MustValidate() {
	if err := k.Validate(); err != nil {
		panic(err)
	}
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return fmt.Sprintf("(%d,%d@L%d)", k.X, k.Y, k.Level)
}

func floorDiv2(v int) int {
	return v >> 1
}
