// Package chronos tracks in-world time: hour of day, day of year and year.
package chronos

import "fmt"

const hoursPerDay = 24.0

// Config controls how fast in-world time runs.
type Config struct {
	RealSecondsPerDay float64
	DaysPerYear       int
	StartHour         float64
}

// DefaultConfig returns one in-world day per real minute.
func DefaultConfig() Config {
	return Config{
		RealSecondsPerDay: 60,
		DaysPerYear:       360,
		StartHour:         12,
	}
}

// State is the persisted part of a Clock.
type State struct {
	TimeOfDay  float64 `yaml:"time_of_day"`
	DayOfYear  int     `yaml:"day_of_year"`
	Year       int     `yaml:"year"`
	TotalHours float64 `yaml:"total_hours"`
}

// Clock advances in-world time from real frame deltas.
type Clock struct {
	cfg   Config
	state State
}

// New returns a clock at StartHour on day 1 of year 1.
// Non-positive config values fall back to defaults.
func New(cfg Config) *Clock {
	def := DefaultConfig()
	if cfg.RealSecondsPerDay <= 0 {
		cfg.RealSecondsPerDay = def.RealSecondsPerDay
	}
	if cfg.DaysPerYear <= 0 {
		cfg.DaysPerYear = def.DaysPerYear
	}
	if cfg.StartHour < 0 || cfg.StartHour >= hoursPerDay {
		cfg.StartHour = def.StartHour
	}
	return &Clock{
		cfg: cfg,
		state: State{
			TimeOfDay:  cfg.StartHour,
			DayOfYear:  1,
			Year:       1,
			TotalHours: cfg.StartHour,
		},
	}
}

// Update advances the clock by dt real seconds. Negative deltas are ignored.
func (c *Clock) Update(dt float64) {
	if dt <= 0 {
		return
	}
	hours := dt / c.cfg.RealSecondsPerDay * hoursPerDay
	c.state.TotalHours += hours
	c.state.TimeOfDay += hours
	for c.state.TimeOfDay >= hoursPerDay {
		c.state.TimeOfDay -= hoursPerDay
		c.state.DayOfYear++
		if c.state.DayOfYear > c.cfg.DaysPerYear {
			c.state.DayOfYear = 1
			c.state.Year++
		}
	}
}

// TimeOfDay returns the hour in [0, 24).
func (c *Clock) TimeOfDay() float64 { return c.state.TimeOfDay }

// DayOfYear returns the day in [1, DaysPerYear].
func (c *Clock) DayOfYear() int { return c.state.DayOfYear }

// Year returns the year, starting at 1.
func (c *Clock) Year() int { return c.state.Year }

// DayProgress maps 00:00..24:00 to [0, 1).
func (c *Clock) DayProgress() float64 {
	return c.state.TimeOfDay / hoursPerDay
}

// YearProgress maps the day of year to (0, 1].
func (c *Clock) YearProgress() float64 {
	return float64(c.state.DayOfYear) / float64(c.cfg.DaysPerYear)
}

// State returns a copy of the clock state for persistence.
func (c *Clock) State() State { return c.state }

// Restore replaces the clock state. Out-of-range fields are clamped.
func (c *Clock) Restore(s State) {
	if s.TimeOfDay < 0 || s.TimeOfDay >= hoursPerDay {
		s.TimeOfDay = 0
	}
	if s.DayOfYear < 1 {
		s.DayOfYear = 1
	}
	if s.DayOfYear > c.cfg.DaysPerYear {
		s.DayOfYear = c.cfg.DaysPerYear
	}
	if s.Year < 1 {
		s.Year = 1
	}
	c.state = s
}

// String formats the clock for the window title.
func (c *Clock) String() string {
	return fmt.Sprintf("Y:%d D:%d H:%05.2f", c.state.Year, c.state.DayOfYear, c.state.TimeOfDay)
}
