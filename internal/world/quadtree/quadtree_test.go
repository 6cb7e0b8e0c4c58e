package quadtree

import (
	"math"
	"testing"

	"github.com/Faultbox/terrastream/internal/world/chunk"
	gmath "github.com/Faultbox/terrastream/pkg/math"
)

type camera struct {
	center gmath.Vec2
	zoom   float64
	aspect float64
}

var cameras = []camera{
	{gmath.Vec2{X: 0, Y: 0}, 1, 720.0 / 1280.0},
	{gmath.Vec2{X: 0.5, Y: 0.5}, 4, 1},
	{gmath.Vec2{X: 1, Y: 1}, 2.5, 0.5},
	{gmath.Vec2{X: -3.25, Y: 7.75}, 0.3, 720.0 / 1280.0},
	{gmath.Vec2{X: 12.125, Y: -40.5}, 17, 0.75},
	{gmath.Vec2{X: 0.3333, Y: -0.6667}, 100, 720.0 / 1280.0},
}

func TestNodeGeometry(t *testing.T) {
	n := Node{Key: chunk.Key{X: 5, Y: 2, Level: 3}}
	if n.Size() != 0.125 {
		t.Errorf("Size() = %v, want 0.125", n.Size())
	}
	if o := n.Origin(); o != (gmath.Vec2{X: 0.625, Y: 0.25}) {
		t.Errorf("Origin() = %v, want {0.625 0.25}", o)
	}
	root := Node{Key: chunk.Key{}}
	if root.Size() != 1.0 {
		t.Errorf("root Size() = %v, want 1", root.Size())
	}
}

func TestComputeNoOverlap(t *testing.T) {
	s := NewSelector()
	for _, cam := range cameras {
		nodes := s.Compute(cam.center, cam.zoom, cam.aspect)
		if len(nodes) == 0 {
			t.Fatalf("camera %+v: no nodes", cam)
		}
		seen := make(map[chunk.Key]bool, len(nodes))
		for i, a := range nodes {
			if seen[a.Key] {
				t.Errorf("camera %+v: duplicate node %v", cam, a.Key)
			}
			seen[a.Key] = true
			for _, b := range nodes[i+1:] {
				if a.Bounds().Overlaps(b.Bounds()) {
					t.Errorf("camera %+v: %v overlaps %v", cam, a.Key, b.Key)
				}
				if a.Key.Contains(b.Key) || b.Key.Contains(a.Key) {
					t.Errorf("camera %+v: %v and %v are nested", cam, a.Key, b.Key)
				}
			}
		}
	}
}

func TestComputeCoversView(t *testing.T) {
	s := NewSelector()
	const samples = 23
	for _, cam := range cameras {
		nodes := s.Compute(cam.center, cam.zoom, cam.aspect)
		view := s.ViewRect(cam.center, cam.zoom, cam.aspect)
		for i := 0; i < samples; i++ {
			for j := 0; j < samples; j++ {
				p := gmath.Vec2{
					X: view.Left + view.Width()*(float64(i)+0.5)/samples,
					Y: view.Bottom + view.Height()*(float64(j)+0.5)/samples,
				}
				covered := false
				for _, n := range nodes {
					if n.Bounds().Contains(p) {
						covered = true
						break
					}
				}
				if !covered {
					t.Errorf("camera %+v: point %v not covered", cam, p)
				}
			}
		}
	}
}

func TestComputeDeterministic(t *testing.T) {
	s := NewSelector()
	other := NewSelector()
	for _, cam := range cameras {
		a := s.Compute(cam.center, cam.zoom, cam.aspect)
		b := other.Compute(cam.center, cam.zoom, cam.aspect)
		c := s.Compute(cam.center, cam.zoom, cam.aspect)
		if len(a) != len(b) || len(a) != len(c) {
			t.Fatalf("camera %+v: lengths differ %d %d %d", cam, len(a), len(b), len(c))
		}
		for i := range a {
			if a[i] != b[i] || a[i] != c[i] {
				t.Errorf("camera %+v: node %d differs", cam, i)
			}
		}
	}
}

func TestComputeResultNotReused(t *testing.T) {
	s := NewSelector()
	first := s.Compute(gmath.Vec2{}, 1, 1)
	snapshot := append([]Node(nil), first...)
	s.Compute(gmath.Vec2{X: 50, Y: 50}, 8, 1)
	for i := range first {
		if first[i] != snapshot[i] {
			t.Fatal("Compute() result was overwritten by a later call")
		}
	}
}

func TestComputeKnownLayout(t *testing.T) {
	s := NewSelector()
	// View is [0.35, 0.65]^2; tiles split down to level 3 (0.125 * 4 = 0.5).
	nodes := s.Compute(gmath.Vec2{X: 0.5, Y: 0.5}, 4, 1)
	if len(nodes) != 16 {
		t.Fatalf("len(nodes) = %d, want 16", len(nodes))
	}
	for _, n := range nodes {
		if n.Key.Level != 3 {
			t.Errorf("node %v: level %d, want 3", n.Key, n.Key.Level)
		}
		if n.Key.X < 2 || n.Key.X > 5 || n.Key.Y < 2 || n.Key.Y > 5 {
			t.Errorf("node %v outside expected range", n.Key)
		}
	}
}

func TestComputeDepthFirstOrder(t *testing.T) {
	s := &Selector{MaxLevel: 1, SplitThreshold: 0.75, Margin: 1.2}
	// View [0.2, 0.8]^2 lies inside root (0,0), which splits once.
	nodes := s.Compute(gmath.Vec2{X: 0.5, Y: 0.5}, 2, 1)
	want := []chunk.Key{
		{X: 0, Y: 0, Level: 1},
		{X: 1, Y: 0, Level: 1},
		{X: 0, Y: 1, Level: 1},
		{X: 1, Y: 1, Level: 1},
	}
	got := Keys(nodes)
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("node %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestComputeRespectsMaxLevel(t *testing.T) {
	s := NewSelector()
	nodes := s.Compute(gmath.Vec2{X: 0.001, Y: 0.001}, 1e6, 1)
	if len(nodes) == 0 {
		t.Fatal("no nodes at extreme zoom")
	}
	for _, n := range nodes {
		if n.Key.Level != s.MaxLevel {
			t.Errorf("node %v: level %d, want %d", n.Key, n.Key.Level, s.MaxLevel)
		}
	}
}

func TestComputeZoomedOutStaysCoarse(t *testing.T) {
	s := NewSelector()
	for _, n := range s.Compute(gmath.Vec2{}, 0.5, 1) {
		if n.Key.Level != 0 {
			t.Errorf("node %v split at zoom 0.5", n.Key)
		}
	}
}

func TestComputeCellBoundaryCamera(t *testing.T) {
	s := NewSelector()
	// Centre sits exactly on the corner shared by four level-0 cells.
	nodes := s.Compute(gmath.Vec2{X: 1, Y: 1}, 0.7, 1)
	seen := make(map[chunk.Key]int)
	for _, n := range nodes {
		seen[n.Key]++
	}
	for _, k := range []chunk.Key{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}} {
		if seen[k] != 1 {
			t.Errorf("cell %v seen %d times, want 1", k, seen[k])
		}
	}
}

func TestComputeRejectsInvalidInput(t *testing.T) {
	s := NewSelector()
	bad := []camera{
		{gmath.Vec2{}, 0, 1},
		{gmath.Vec2{}, -2, 1},
		{gmath.Vec2{}, math.NaN(), 1},
		{gmath.Vec2{}, math.Inf(1), 1},
		{gmath.Vec2{}, 1, 0},
		{gmath.Vec2{X: math.NaN()}, 1, 1},
	}
	for _, cam := range bad {
		if nodes := s.Compute(cam.center, cam.zoom, cam.aspect); nodes != nil {
			t.Errorf("camera %+v: got %d nodes, want nil", cam, len(nodes))
		}
	}
}
