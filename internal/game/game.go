// Package game implements the interactive map viewer: window, input and
// the frame loop around a streaming Session.
package game

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/terrastream/internal/config"
	"github.com/Faultbox/terrastream/internal/engine/debug"
	"github.com/Faultbox/terrastream/internal/engine/input"
	"github.com/Faultbox/terrastream/internal/engine/renderer"
	"github.com/Faultbox/terrastream/internal/engine/scene"
	"github.com/Faultbox/terrastream/internal/engine/texture"
	"github.com/Faultbox/terrastream/internal/engine/window"
	"github.com/Faultbox/terrastream/internal/logger"
	"github.com/Faultbox/terrastream/internal/storage"
)

// Game is the main viewer instance.
type Game struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input

	tiles  *texture.GLArrayBackend
	chunks *scene.ChunkRenderer
	grid   *scene.GridRenderer
	shots  *debug.ScreenshotCapture

	session *Session
	store   storage.Store

	screenshotPending bool
}

// New opens the window, GL resources and the world store.
func New(cfg *config.Config, opts SessionOptions) (*Game, error) {
	logger.Info("Initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.String("backend", cfg.Storage.Backend),
		zap.String("save_dir", cfg.Storage.Dir),
	)

	g := &Game{cfg: cfg}

	var err error
	g.store, err = storage.Open(cfg.Storage.Backend, cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open world store: %w", err)
	}

	// Window first: it creates the OpenGL context everything below needs.
	g.window, err = window.New(window.Config{
		Title:      "Terrastream",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	w, h := g.window.DrawableSize()
	g.renderer, err = renderer.New(renderer.Config{Width: w, Height: h})
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	g.tiles = texture.NewGLArrayBackend(cfg.Pool.Capacity, cfg.World.ChunkResolution)
	if g.chunks, err = scene.NewChunkRenderer(); err != nil {
		g.Close()
		return nil, err
	}
	if g.grid, err = scene.NewGridRenderer(); err != nil {
		g.Close()
		return nil, err
	}
	g.shots = debug.NewScreenshotCapture("screenshots", "terrastream")
	g.input = input.New()

	g.session, err = NewSession(cfg, g.store, g.tiles, opts)
	if err != nil {
		g.Close()
		return nil, err
	}

	logger.Info("Viewer initialized")
	return g, nil
}

// Run starts the main loop and returns when the window closes.
func (g *Game) Run() error {
	g.running = true

	lastTime := time.Now()
	frameCount := 0
	fps := 0
	fpsTimer := time.Now()
	frameBudget := time.Duration(0)
	if g.cfg.Graphics.FPSLimit > 0 && !g.cfg.Graphics.VSync {
		frameBudget = time.Second / time.Duration(g.cfg.Graphics.FPSLimit)
	}

	logger.Info("Starting viewer loop")

	for g.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if g.input.Update() {
			g.running = false
			break
		}
		g.handleEvents()
		g.update(dt)
		g.render()

		if g.screenshotPending {
			g.screenshotPending = false
			g.captureScreenshot()
		}
		g.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			fps = frameCount
			frameCount = 0
			fpsTimer = time.Now()
			g.window.SetTitle(g.session.Title(fps))
			logger.Debug("Frame stats",
				zap.Int("fps", fps),
				zap.Int("drawn", g.chunks.Drawn),
				zap.Int("skipped", g.chunks.Skipped),
				zap.Any("cache", g.session.Streamer.Cache().Stats()),
				zap.Any("pool", g.session.Streamer.Pool().Stats()),
			)
		}

		if frameBudget > 0 {
			if spare := frameBudget - time.Since(now); spare > 0 {
				time.Sleep(spare)
			}
		}
	}

	return nil
}

func (g *Game) handleEvents() {
	cam := g.session.Camera
	ww, wh := g.window.GetSize()

	for _, event := range g.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			g.renderer.Resize(g.window.DrawableSize())

		case input.EventMouseWheel:
			cam.HandleWheelAt(event.Wheel, event.MouseX, event.MouseY, ww, wh)

		case input.EventMouseDown:
			if event.Button == sdl.BUTTON_LEFT {
				cam.BeginDrag()
			}

		case input.EventMouseUp:
			if event.Button == sdl.BUTTON_LEFT {
				cam.EndDrag()
			}

		case input.EventMouseMove:
			cam.HandleDrag(event.DeltaX, event.DeltaY, wh)

		case input.EventKeyDown:
			g.handleKey(event.Key)
		}
	}
}

func (g *Game) handleKey(key sdl.Scancode) {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		g.running = false
	case sdl.SCANCODE_F5:
		if _, err := g.session.Save(); err != nil {
			logger.Error("Save failed", zap.Error(err))
		}
	case sdl.SCANCODE_F9:
		if _, err := g.session.Reload(); err != nil {
			logger.Error("Reload failed", zap.Error(err))
		}
	case sdl.SCANCODE_G:
		g.grid.Toggle()
	case sdl.SCANCODE_F12:
		g.screenshotPending = true
	}
}

func (g *Game) update(dt float64) {
	var right, up float64
	if g.input.IsKeyHeld(sdl.SCANCODE_D) || g.input.IsKeyHeld(sdl.SCANCODE_RIGHT) {
		right++
	}
	if g.input.IsKeyHeld(sdl.SCANCODE_A) || g.input.IsKeyHeld(sdl.SCANCODE_LEFT) {
		right--
	}
	if g.input.IsKeyHeld(sdl.SCANCODE_W) || g.input.IsKeyHeld(sdl.SCANCODE_UP) {
		up++
	}
	if g.input.IsKeyHeld(sdl.SCANCODE_S) || g.input.IsKeyHeld(sdl.SCANCODE_DOWN) {
		up--
	}
	if right != 0 || up != 0 {
		g.session.Camera.HandleMovement(right, up, dt)
	}
	g.session.Update(dt)
}

func (g *Game) render() {
	w, h := g.renderer.Size()
	nodes := g.session.Step(w, h)

	cam := g.session.Camera
	viewW, viewH := cam.ViewSize(w, h)
	viewProj := scene.ViewProjection(viewW, viewH)

	g.renderer.Begin()
	g.chunks.Draw(nodes, g.session.Streamer.Pool(), g.tiles, cam.Position, viewProj,
		scene.Daylight(g.session.Clock.DayProgress()))
	g.grid.Draw(nodes, cam.Position, viewProj)
	g.renderer.End()
}

func (g *Game) captureScreenshot() {
	pixels, w, h := g.renderer.ReadPixels()
	path, err := g.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		logger.Error("Screenshot failed", zap.Error(err))
		return
	}
	logger.Info("Screenshot saved", zap.String("path", path))
}

// Close releases GPU resources, the window and the store. It does not save.
func (g *Game) Close() {
	logger.Info("Closing viewer")

	if g.grid != nil {
		g.grid.Delete()
	}
	if g.chunks != nil {
		g.chunks.Delete()
	}
	if g.tiles != nil {
		g.tiles.Delete()
	}
	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
	if g.store != nil {
		if err := g.store.Close(); err != nil {
			logger.Warn("Closing store failed", zap.Error(err))
		}
	}
}
