package main

import (
	"flag"
	"math"
	"strconv"

	"github.com/Faultbox/terrastream/internal/config"
	"github.com/Faultbox/terrastream/internal/game"
	"github.com/Faultbox/terrastream/internal/logger"
	"github.com/Faultbox/terrastream/internal/storage"
)

type commonFlags struct {
	configPath string
	saveDir    string
	backend    string
	debug      bool
	seed       *int64
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.configPath, "config", "", "Path to config file")
	fs.StringVar(&c.saveDir, "save-dir", "", "World save directory")
	fs.StringVar(&c.backend, "backend", "", "Storage backend: fs, sqlite or memory")
	fs.BoolVar(&c.debug, "debug", false, "Enable debug logging")
	fs.Func("seed", "Force world seed", func(s string) error {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		c.seed = &v
		return nil
	})
	return c
}

// load reads the config file and applies the command's overrides.
func (c *commonFlags) load() (*config.Config, error) {
	cfg, err := config.LoadFile(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.saveDir != "" {
		cfg.Storage.Dir = c.saveDir
	}
	if c.backend != "" {
		cfg.Storage.Backend = c.backend
	}
	if c.seed != nil {
		cfg.World.Seed = *c.seed
	}
	if c.debug {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *commonFlags) open(cfg *config.Config) (storage.Store, error) {
	return storage.Open(cfg.Storage.Backend, cfg.Storage.Dir)
}

func (c *commonFlags) sessionOptions() game.SessionOptions {
	return game.SessionOptions{ForceSeed: c.seed != nil}
}

// viewFlags override the camera a session resumes with. NaN means unset.
type viewFlags struct {
	x, y, zoom    float64
	width, height int
}

func addViewFlags(fs *flag.FlagSet, width, height int) *viewFlags {
	v := &viewFlags{}
	fs.Float64Var(&v.x, "x", math.NaN(), "Camera center X in world units")
	fs.Float64Var(&v.y, "y", math.NaN(), "Camera center Y in world units")
	fs.Float64Var(&v.zoom, "zoom", math.NaN(), "Camera zoom")
	fs.IntVar(&v.width, "width", width, "Viewport width in pixels")
	fs.IntVar(&v.height, "height", height, "Viewport height in pixels")
	return v
}

func (v *viewFlags) apply(s *game.Session) {
	if !math.IsNaN(v.x) {
		s.Camera.Position.X = v.x
	}
	if !math.IsNaN(v.y) {
		s.Camera.Position.Y = v.y
	}
	if !math.IsNaN(v.zoom) {
		s.Camera.SetZoom(v.zoom)
	}
}
