// Package renderer owns global OpenGL state and frame setup.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/terrastream/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Renderer handles frame-level OpenGL state.
type Renderer struct {
	config Config
}

// New initializes OpenGL bindings and default state.
// Must be called after the OpenGL context is created.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{config: cfg}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	var maxLayers int32
	gl.GetIntegerv(gl.MAX_ARRAY_TEXTURE_LAYERS, &maxLayers)
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
		zap.Int32("max_array_layers", maxLayers),
	)

	// The map is a flat stack of quads drawn back to front.
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0.05, 0.05, 0.08, 1.0)

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close releases renderer resources.
func (r *Renderer) Close() {
	logger.Info("Closing renderer")
}

// Resize sets the viewport to the drawable size in pixels.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("Renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the viewport size in pixels.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.Flush()
}

// ReadPixels returns the back buffer as RGBA8, bottom row first.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	if len(pixels) == 0 {
		return pixels, w, h
	}
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}
