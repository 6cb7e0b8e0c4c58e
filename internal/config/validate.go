package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/terrastream/internal/logger"
	"github.com/Faultbox/terrastream/internal/storage"
	"github.com/Faultbox/terrastream/internal/world/cache"
	"github.com/Faultbox/terrastream/internal/world/chunk"
)

// Validate reports every setting the viewer cannot run with.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Graphics.Width > 0 && c.Graphics.Height > 0,
		"graphics: window size %dx%d must be positive", c.Graphics.Width, c.Graphics.Height)

	check(c.World.ChunkResolution > 0 && c.World.ChunkResolution <= chunk.MaxResolution,
		"world.chunk_resolution %d out of range [1, %d]", c.World.ChunkResolution, chunk.MaxResolution)
	check(c.World.MaxLevel >= 0 && c.World.MaxLevel <= chunk.MaxLevel,
		"world.max_level %d out of range [0, %d]", c.World.MaxLevel, chunk.MaxLevel)
	check(c.World.SplitThreshold > 0, "world.split_threshold must be positive")
	check(c.World.ViewMargin > 0, "world.view_margin must be positive")

	check(c.Noise.BaseScale > 0, "noise.base_scale must be positive")
	check(c.Noise.Octaves > 0, "noise.octaves must be positive")

	check(c.Pool.Capacity > 0, "pool.capacity %d must be positive", c.Pool.Capacity)

	if _, err := cache.ParseWritePolicy(c.Cache.WritePolicy); err != nil {
		errs = append(errs, fmt.Errorf("cache.write_policy: %w", err))
	}
	check(storage.ValidBackend(c.Storage.Backend), "storage.backend %q unknown", c.Storage.Backend)

	check(c.Camera.MinZoom > 0 && c.Camera.MaxZoom >= c.Camera.MinZoom,
		"camera: zoom bounds [%v, %v] invalid", c.Camera.MinZoom, c.Camera.MaxZoom)
	check(c.Camera.Zoom > 0, "camera.zoom must be positive")
	check(c.Camera.ZoomFactor > 1, "camera.zoom_factor must be greater than 1")

	check(c.Clock.RealSecondsPerDay > 0, "clock.real_seconds_per_day must be positive")
	check(c.Clock.DaysPerYear > 0, "clock.days_per_year must be positive")

	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errors.Join(errs...)
}
