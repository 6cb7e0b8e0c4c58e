package debug

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gmath "github.com/Faultbox/terrastream/pkg/math"
)

func TestFlipRows(t *testing.T) {
	// Two rows: bottom red, top blue.
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	img, err := FlipRows(pixels, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if r, _, b, _ := img.At(0, 0).RGBA(); r != 0 || b == 0 {
		t.Errorf("top row should be blue, got r=%d b=%d", r, b)
	}
	if r, _, _, _ := img.At(0, 1).RGBA(); r == 0 {
		t.Error("bottom row should be red")
	}

	if _, err := FlipRows(pixels, 2, 2); err == nil {
		t.Error("FlipRows() accepted mismatched size")
	}
}

func TestCaptureFromPixels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "terrastream")
	sc.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	path, err := sc.CaptureFromPixels(make([]byte, 3*2*4), 3, 2)
	if err != nil {
		t.Fatalf("CaptureFromPixels() error = %v", err)
	}
	if !strings.HasSuffix(path, "terrastream_2026-03-04_05-06-07.000.png") {
		t.Errorf("unexpected filename %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("image size = %v, want 3x2", b)
	}
}

func TestAppendRectOutline(t *testing.T) {
	r := gmath.Rect{Left: 1, Bottom: 2, Right: 3, Top: 5}
	got := AppendRectOutline(nil, r, gmath.Vec2{X: 1, Y: 1})
	want := []float32{
		0, 1, 2, 1,
		2, 1, 2, 4,
		2, 4, 0, 4,
		0, 4, 0, 1,
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("vertex %d = %v, want %v", i, got[i], want[i])
		}
	}

	got = AppendRectOutline(got, r, gmath.Vec2{})
	if len(got) != 32 {
		t.Errorf("second append len = %d, want 32", len(got))
	}
}
