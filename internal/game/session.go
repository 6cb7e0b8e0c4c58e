package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/terrastream/internal/config"
	"github.com/Faultbox/terrastream/internal/engine/camera"
	"github.com/Faultbox/terrastream/internal/engine/texture"
	"github.com/Faultbox/terrastream/internal/logger"
	"github.com/Faultbox/terrastream/internal/simulation/chronos"
	"github.com/Faultbox/terrastream/internal/simulation/geo"
	"github.com/Faultbox/terrastream/internal/storage"
	"github.com/Faultbox/terrastream/internal/world"
	"github.com/Faultbox/terrastream/internal/world/cache"
	"github.com/Faultbox/terrastream/internal/world/gen"
	"github.com/Faultbox/terrastream/internal/world/quadtree"
)

// SessionOptions adjust how a session starts.
type SessionOptions struct {
	// ForceSeed keeps cfg.World.Seed even when the save records another.
	ForceSeed bool
}

// Session is the viewer state that does not touch the window or GPU:
// camera, clock and the streaming pipeline over one store.
type Session struct {
	cfg      *config.Config
	store    storage.Store
	seed     int64
	Camera   *camera.MapCamera
	Clock    *chronos.Clock
	Streamer *world.Streamer
}

// NewSession builds the pipeline over store and backend. A saved world state
// is resumed: its camera and clock are restored and its seed wins unless
// opts.ForceSeed is set. The session does not own store.
func NewSession(cfg *config.Config, store storage.Store, backend texture.Backend, opts SessionOptions) (*Session, error) {
	saved, found, err := store.LoadWorld()
	if err != nil {
		return nil, fmt.Errorf("load world state: %w", err)
	}

	seed := cfg.World.Seed
	if found && !opts.ForceSeed {
		seed = saved.Seed
	}

	g, err := gen.New(seed, gen.Params{
		Resolution:  cfg.World.ChunkResolution,
		BaseScale:   cfg.Noise.BaseScale,
		Octaves:     cfg.Noise.Octaves,
		Persistence: cfg.Noise.Persistence,
		Lacunarity:  cfg.Noise.Lacunarity,
	})
	if err != nil {
		return nil, fmt.Errorf("create generator: %w", err)
	}

	policy, err := cache.ParseWritePolicy(cfg.Cache.WritePolicy)
	if err != nil {
		return nil, err
	}
	c := cache.New(store, g, cache.WithWritePolicy(policy))

	var pool *texture.Pool
	if backend != nil {
		pool, err = texture.NewPool(cfg.Pool.Capacity, backend, c, texture.ColorEncoder{Clouds: cfg.Pool.Clouds})
		if err != nil {
			return nil, err
		}
	}

	s := &Session{
		cfg:      cfg,
		store:    store,
		seed:     seed,
		Camera:   NewCamera(cfg.Camera),
		Clock:    chronos.New(ClockConfig(cfg.Clock)),
		Streamer: world.NewStreamer(NewSelector(cfg.World), c, pool),
	}

	if found {
		s.restore(saved)
		logger.Info("Resumed saved world",
			zap.Int64("seed", seed),
			zap.Float64("x", saved.CameraX),
			zap.Float64("y", saved.CameraY),
			zap.Stringer("clock", s.Clock))
		if saved.Seed != seed {
			logger.Warn("Seed differs from saved world; saved chunks keep their terrain",
				zap.Int64("saved", saved.Seed), zap.Int64("seed", seed))
		}
	} else {
		logger.Info("Starting new world", zap.Int64("seed", seed))
	}
	return s, nil
}

// NewCamera creates a map camera from config.
func NewCamera(cfg config.CameraConfig) *camera.MapCamera {
	cam := camera.NewMapCamera()
	cam.MinZoom = cfg.MinZoom
	cam.MaxZoom = cfg.MaxZoom
	cam.ZoomFactor = cfg.ZoomFactor
	cam.PanSpeed = cfg.PanSpeed
	cam.SetZoom(cfg.Zoom)
	return cam
}

// NewSelector creates a chunk selector from config.
func NewSelector(cfg config.WorldConfig) *quadtree.Selector {
	sel := quadtree.NewSelector()
	sel.MaxLevel = cfg.MaxLevel
	sel.SplitThreshold = cfg.SplitThreshold
	sel.Margin = cfg.ViewMargin
	return sel
}

// ClockConfig converts clock settings.
func ClockConfig(cfg config.ClockConfig) chronos.Config {
	return chronos.Config{
		RealSecondsPerDay: cfg.RealSecondsPerDay,
		DaysPerYear:       cfg.DaysPerYear,
		StartHour:         cfg.StartHour,
	}
}

// Config returns the configuration the session was built from.
func (s *Session) Config() *config.Config { return s.cfg }

// Seed returns the seed the generator runs with.
func (s *Session) Seed() int64 { return s.seed }

// Update advances in-world time.
func (s *Session) Update(dt float64) {
	s.Clock.Update(dt)
}

// Step streams the frame for a viewport of width x height pixels.
func (s *Session) Step(width, height int) []quadtree.Node {
	return s.Streamer.Step(s.Camera.Position, s.Camera.Zoom, camera.Aspect(width, height))
}

// WorldState captures what Save persists besides chunks.
func (s *Session) WorldState() storage.WorldState {
	return storage.WorldState{
		Seed:    s.seed,
		CameraX: s.Camera.Position.X,
		CameraY: s.Camera.Position.Y,
		Zoom:    s.Camera.Zoom,
		Clock:   s.Clock.State(),
	}
}

// Save writes world state, then every resident chunk. It returns the number
// of chunks written.
func (s *Session) Save() (int, error) {
	if err := s.store.SaveWorld(s.WorldState()); err != nil {
		return 0, fmt.Errorf("save world state: %w", err)
	}
	n, err := s.Streamer.Cache().SaveAll()
	if err != nil {
		return n, fmt.Errorf("save chunks: %w", err)
	}
	logger.Info("World saved", zap.Int("chunks", n))
	return n, nil
}

// Reload restores the saved camera and clock and drops every resident chunk
// and texture mapping so the next Step reads from storage. Without a saved
// state nothing changes. It reports whether a saved state existed.
func (s *Session) Reload() (bool, error) {
	saved, found, err := s.store.LoadWorld()
	if err != nil {
		return false, fmt.Errorf("load world state: %w", err)
	}
	if !found {
		logger.Info("No saved world to reload")
		return false, nil
	}
	s.restore(saved)
	s.Streamer.Reload()
	logger.Info("World reloaded")
	return true, nil
}

func (s *Session) restore(st storage.WorldState) {
	s.Camera.Position.X = st.CameraX
	s.Camera.Position.Y = st.CameraY
	if st.Zoom > 0 {
		s.Camera.SetZoom(st.Zoom)
	}
	s.Clock.Restore(st.Clock)
}

// Title formats the window title.
func (s *Session) Title(fps int) string {
	res := float64(s.cfg.World.ChunkResolution)
	lat, lon := geo.LatLon(s.Camera.Position.X*res, s.Camera.Position.Y*res)
	title := fmt.Sprintf("Terrastream | FPS %d | zoom %.2f | %s | lat %.2f lon %.2f",
		fps, s.Camera.Zoom, s.Clock, lat, lon)
	if pool := s.Streamer.Pool(); pool != nil {
		title += fmt.Sprintf(" | pool %d/%d", pool.Occupied(), pool.Capacity())
	}
	return title
}
