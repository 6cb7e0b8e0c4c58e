package config

import (
	"flag"
	"strconv"
)

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagSaveDir    = flag.String("save-dir", "", "World save directory")
	flagBackend    = flag.String("backend", "", "Storage backend: fs, sqlite or memory")
	flagPool       = flag.Int("pool", 0, "Texture pool capacity")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagEphemeral  = flag.Bool("ephemeral", false, "Keep the world in memory only")

	// flagSeed is nil unless --seed was given; 0 is a valid seed.
	flagSeed *int64
)

func init() {
	flag.Func("seed", "World seed", func(s string) error {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		flagSeed = &v
		return nil
	})
}

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SeedOverride reports the seed given with --seed, if any. An explicit seed
// takes priority over the one stored with a saved world.
func SeedOverride() (int64, bool) {
	if flagSeed == nil {
		return 0, false
	}
	return *flagSeed, true
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if flagSeed != nil {
		cfg.World.Seed = *flagSeed
	}
	if *flagSaveDir != "" {
		cfg.Storage.Dir = *flagSaveDir
	}
	if *flagBackend != "" {
		cfg.Storage.Backend = *flagBackend
	}
	if *flagEphemeral {
		cfg.Storage.Backend = "memory"
	}
	if *flagPool > 0 {
		cfg.Pool.Capacity = *flagPool
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
}
