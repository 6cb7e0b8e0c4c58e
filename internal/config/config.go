// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	World    WorldConfig    `yaml:"world"`
	Noise    NoiseConfig    `yaml:"noise"`
	Pool     PoolConfig     `yaml:"pool"`
	Cache    CacheConfig    `yaml:"cache"`
	Storage  StorageConfig  `yaml:"storage"`
	Camera   CameraConfig   `yaml:"camera"`
	Clock    ClockConfig    `yaml:"clock"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
}

// WorldConfig holds chunk layout and visibility settings.
type WorldConfig struct {
	Seed            int64   `yaml:"seed"`
	ChunkResolution int     `yaml:"chunk_resolution"`
	MaxLevel        int     `yaml:"max_level"`
	SplitThreshold  float64 `yaml:"split_threshold"`
	ViewMargin      float64 `yaml:"view_margin"`
}

// NoiseConfig holds terrain generator settings.
type NoiseConfig struct {
	BaseScale   float64 `yaml:"base_scale"`
	Octaves     int     `yaml:"octaves"`
	Persistence float64 `yaml:"persistence"`
	Lacunarity  float64 `yaml:"lacunarity"`
}

// PoolConfig holds GPU texture slot settings.
type PoolConfig struct {
	Capacity int  `yaml:"capacity"`
	Clouds   bool `yaml:"clouds"`
}

// CacheConfig holds chunk cache settings.
type CacheConfig struct {
	WritePolicy string `yaml:"write_policy"` // write-back or write-through
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend string `yaml:"backend"` // fs, sqlite or memory
	Dir     string `yaml:"dir"`
}

// CameraConfig holds the initial view and navigation limits.
type CameraConfig struct {
	Zoom       float64 `yaml:"zoom"`
	MinZoom    float64 `yaml:"min_zoom"`
	MaxZoom    float64 `yaml:"max_zoom"`
	ZoomFactor float64 `yaml:"zoom_factor"`
	PanSpeed   float64 `yaml:"pan_speed"`
}

// ClockConfig holds in-world time settings.
type ClockConfig struct {
	RealSecondsPerDay float64 `yaml:"real_seconds_per_day"`
	DaysPerYear       int     `yaml:"days_per_year"`
	StartHour         float64 `yaml:"start_hour"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   60,
		},
		World: WorldConfig{
			Seed:            12345,
			ChunkResolution: 64,
			MaxLevel:        6,
			SplitThreshold:  0.75,
			ViewMargin:      1.2,
		},
		Noise: NoiseConfig{
			BaseScale:   0.02,
			Octaves:     4,
			Persistence: 0.5,
			Lacunarity:  2.0,
		},
		Pool: PoolConfig{
			Capacity: 64,
			Clouds:   true,
		},
		Cache: CacheConfig{
			WritePolicy: "write-back",
		},
		Storage: StorageConfig{
			Backend: "fs",
			Dir:     "saves/default",
		},
		Camera: CameraConfig{
			Zoom:       1.0,
			MinZoom:    0.1,
			MaxZoom:    100.0,
			ZoomFactor: 1.1,
			PanSpeed:   1.0,
		},
		Clock: ClockConfig{
			RealSecondsPerDay: 60,
			DaysPerYear:       360,
			StartHour:         12,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
