package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"go.uber.org/zap"

	"github.com/Faultbox/terrastream/internal/engine/camera"
	"github.com/Faultbox/terrastream/internal/engine/debug"
	"github.com/Faultbox/terrastream/internal/engine/texture"
	"github.com/Faultbox/terrastream/internal/game"
	"github.com/Faultbox/terrastream/internal/logger"
	"github.com/Faultbox/terrastream/internal/storage"
	"github.com/Faultbox/terrastream/internal/world/quadtree"
)

var background = color.RGBA{A: 255}

func cmdInfo(args []string, out io.Writer) (err error) {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	common := addCommonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := common.load()
	if err != nil {
		return err
	}
	store, err := common.open(cfg)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, store.Close()) }()

	state, found, err := store.LoadWorld()
	if err != nil {
		return err
	}
	count, err := store.CountChunks()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Save:    %s (%s)\n", cfg.Storage.Dir, cfg.Storage.Backend)
	if !found {
		fmt.Fprintln(out, "World:   none saved")
	} else {
		fmt.Fprintf(out, "Seed:    %d\n", state.Seed)
		fmt.Fprintf(out, "Camera:  %.4f, %.4f zoom %.3f\n", state.CameraX, state.CameraY, state.Zoom)
		fmt.Fprintf(out, "Clock:   Y:%d D:%d H:%05.2f\n", state.Clock.Year, state.Clock.DayOfYear, state.Clock.TimeOfDay)
	}
	fmt.Fprintf(out, "Chunks:  %d\n", count)
	return nil
}

// cmdBake generates every chunk visible from a view and saves the world.
func cmdBake(args []string, out io.Writer) (err error) {
	fs := flag.NewFlagSet("bake", flag.ContinueOnError)
	common := addCommonFlags(fs)
	view := addViewFlags(fs, 1280, 720)
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, store, err := openSession(common, view)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, store.Close()) }()

	nodes := s.Step(view.width, view.height)
	c := s.Streamer.Cache()
	for _, n := range nodes {
		c.Get(n.Key)
	}
	saved, err := s.Save()
	if err != nil {
		return err
	}

	st := c.Stats()
	logger.Info("Bake complete",
		zap.Int("visible", len(nodes)),
		zap.Int("loaded", st.Loads),
		zap.Int("generated", st.Generated),
		zap.Int("saved", saved))
	fmt.Fprintf(out, "Baked %d chunks (%d loaded, %d generated, %d written)\n",
		len(nodes), st.Loads, st.Generated, saved)
	return nil
}

// cmdPreview renders the visible chunks of a view to a PNG. Generated
// chunks are not saved.
func cmdPreview(args []string, out io.Writer) (err error) {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	common := addCommonFlags(fs)
	view := addViewFlags(fs, 512, 512)
	output := fs.String("o", "preview.png", "Output PNG path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, store, err := openSession(common, view)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, store.Close()) }()

	img := renderView(s, view.width, view.height)
	if err := debug.WritePNG(*output, img); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %s (%dx%d, %d chunks)\n", *output, view.width, view.height, len(s.Streamer.Visible()))
	return nil
}

func cmdVisible(args []string, out io.Writer) (err error) {
	fs := flag.NewFlagSet("visible", flag.ContinueOnError)
	common := addCommonFlags(fs)
	view := addViewFlags(fs, 1280, 720)
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, store, err := openSession(common, view)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, store.Close()) }()

	nodes := s.Step(view.width, view.height)
	levels := make(map[int]int)
	for _, n := range nodes {
		levels[n.Key.Level]++
		fmt.Fprintln(out, n.Key)
	}
	fmt.Fprintf(out, "%d chunks", len(nodes))
	for l := 0; l <= s.Streamer.Selector().MaxLevel; l++ {
		if levels[l] > 0 {
			fmt.Fprintf(out, " L%d:%d", l, levels[l])
		}
	}
	fmt.Fprintln(out)
	return nil
}

// openSession opens the store and a headless session positioned by view.
// The caller closes the returned store.
func openSession(common *commonFlags, view *viewFlags) (*game.Session, storage.Store, error) {
	if view.width <= 0 || view.height <= 0 {
		return nil, nil, fmt.Errorf("viewport must be positive, got %dx%d", view.width, view.height)
	}
	cfg, err := common.load()
	if err != nil {
		return nil, nil, err
	}
	store, err := common.open(cfg)
	if err != nil {
		return nil, nil, err
	}
	s, err := game.NewSession(cfg, store, nil, common.sessionOptions())
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	view.apply(s)
	return s, store, nil
}

// renderView draws the chunks selected for the session camera, sampling
// each chunk's encoded colors with nearest filtering.
func renderView(s *game.Session, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = background.R, background.G, background.B, background.A
	}

	cam := s.Camera
	enc := texture.ColorEncoder{Clouds: s.Config().Pool.Clouds}
	var rgba []byte
	for _, n := range s.Step(width, height) {
		d := s.Streamer.Cache().Get(n.Key)
		rgba = enc.Encode(d, rgba)
		blitNode(img, cam, n, d.Resolution(), rgba)
	}
	return img
}

func blitNode(img *image.RGBA, cam *camera.MapCamera, n quadtree.Node, res int, rgba []byte) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	scale := float64(h) * cam.Zoom
	r := n.Bounds()

	x0 := int(math.Floor((r.Left-cam.Position.X)*scale + float64(w)/2))
	x1 := int(math.Ceil((r.Right-cam.Position.X)*scale + float64(w)/2))
	y0 := int(math.Floor(float64(h)/2 - (r.Top-cam.Position.Y)*scale))
	y1 := int(math.Ceil(float64(h)/2 - (r.Bottom-cam.Position.Y)*scale))
	x0, x1 = max(x0, 0), min(x1, w)
	y0, y1 = max(y0, 0), min(y1, h)

	size := n.Size()
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			p := cam.ScreenToWorld(px, py, w, h)
			if !r.Contains(p) {
				continue
			}
			u := min(int((p.X-r.Left)/size*float64(res)), res-1)
			v := min(int((p.Y-r.Bottom)/size*float64(res)), res-1)
			src := (v*res + u) * 4
			dst := img.PixOffset(px, py)
			copy(img.Pix[dst:dst+4], rgba[src:src+4])
		}
	}
}
