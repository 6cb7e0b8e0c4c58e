// Package quadtree selects the set of chunks, and their level of detail,
// needed to cover the camera's view.
package quadtree

import (
	"math"

	"github.com/Faultbox/terrastream/internal/world/chunk"
	gmath "github.com/Faultbox/terrastream/pkg/math"
)

// Default selector settings.
const (
	DefaultMaxLevel       = 6
	DefaultSplitThreshold = 0.75
	DefaultMargin         = 1.2
)

// Node is one selected tile. Nodes are plain values, created per frame.
type Node struct {
	Key chunk.Key
}

// Size returns the tile side length in world units.
func (n Node) Size() float64 { return n.Key.Size() }

// Origin returns the tile's bottom-left corner in world units.
func (n Node) Origin() gmath.Vec2 { return n.Key.Origin() }

// Bounds returns the tile rectangle.
func (n Node) Bounds() gmath.Rect { return n.Key.Bounds() }

// Keys extracts the chunk keys of nodes, preserving order.
func Keys(nodes []Node) []chunk.Key {
	keys := make([]chunk.Key, len(nodes))
	for i, n := range nodes {
		keys[i] = n.Key
	}
	return keys
}

// Selector computes visible tiles for a camera.
//
// A tile is split while its on-screen coverage (size * zoom, the fraction of
// the view height it spans) exceeds SplitThreshold and it is above MaxLevel.
type Selector struct {
	MaxLevel       int
	SplitThreshold float64
	Margin         float64

	stack []Node
	out   []Node
}

// NewSelector returns a selector with default settings.
func NewSelector() *Selector {
	return &Selector{
		MaxLevel:       DefaultMaxLevel,
		SplitThreshold: DefaultSplitThreshold,
		Margin:         DefaultMargin,
	}
}

// ViewRect returns the margin-inflated view rectangle in world units.
// aspect is viewport height / width.
func (s *Selector) ViewRect(center gmath.Vec2, zoom, aspect float64) gmath.Rect {
	h := (1.0 / zoom) * s.Margin
	w := h / aspect
	return gmath.RectAround(center, w, h)
}

// Compute returns the leaf tiles covering the view in depth-first order.
// The result is freshly allocated and owned by the caller. Non-positive or
// non-finite zoom or aspect yields nil.
func (s *Selector) Compute(center gmath.Vec2, zoom, aspect float64) []Node {
	if !validPositive(zoom) || !validPositive(aspect) || !center.IsFinite() {
		return nil
	}
	view := s.ViewRect(center, zoom, aspect)

	s.out = s.out[:0]
	x0, x1 := int(math.Floor(view.Left)), int(math.Ceil(view.Right))
	y0, y1 := int(math.Floor(view.Bottom)), int(math.Ceil(view.Top))
	for x := x0; x < x1; x++ {
		for y := y0; y < y1; y++ {
			s.descend(Node{Key: chunk.Key{X: x, Y: y}}, zoom, view)
		}
	}

	out := make([]Node, len(s.out))
	copy(out, s.out)
	return out
}

func (s *Selector) descend(root Node, zoom float64, view gmath.Rect) {
	s.stack = append(s.stack[:0], root)
	for len(s.stack) > 0 {
		n := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]

		if !view.Touches(n.Bounds()) {
			continue
		}
		if n.Size()*zoom > s.SplitThreshold && n.Key.Level < s.MaxLevel {
			children := n.Key.Children()
			for i := len(children) - 1; i >= 0; i-- {
				s.stack = append(s.stack, Node{Key: children[i]})
			}
			continue
		}
		s.out = append(s.out, n)
	}
}

func validPositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}
