package chunk

import (
	"fmt"
)

// Channel indexes one of the sampled fields stored per pixel.
type Channel int

// Terrain channels come first, atmosphere channels after.
const (
	Height Channel = iota
	GroundTemp
	GroundHumidity
	Biomass
	WindX
	WindY
	AirTemp
	AirHumidity

	NumChannels = 8
)

var channelNames = [NumChannels]string{
	"height", "ground_temp", "ground_humidity", "biomass",
	"wind_x", "wind_y", "air_temp", "air_humidity",
}

func (c Channel) String() string {
	if c < 0 || int(c) >= NumChannels {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelNames[c]
}

// MaxResolution bounds the grid side so a single chunk stays a few MB.
const MaxResolution = 1024

// Data is the sampled grid for one chunk: Resolution x Resolution pixels of
// NumChannels float32 values in [0, 1], pixel-interleaved, rows bottom to top.
//
// Data is owned by exactly one holder at a time and is not safe for
// concurrent use.
type Data struct {
	key    Key
	res    int
	values []float32
	dirty  bool
}

// New returns a zeroed grid for key at the given resolution.
func New(key Key, res int) (*Data, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if res <= 0 || res > MaxResolution {
		return nil, fmt.Errorf("chunk %v: resolution %d out of range [1, %d]", key, res, MaxResolution)
	}
	return &Data{
		key:    key,
		res:    res,
		values: make([]float32, res*res*NumChannels),
	}, nil
}

// FromValues wraps an existing value slice. The slice is retained, not copied.
func FromValues(key Key, res int, values []float32) (*Data, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if res <= 0 || res > MaxResolution {
		return nil, fmt.Errorf("chunk %v: resolution %d out of range [1, %d]", key, res, MaxResolution)
	}
	if want := res * res * NumChannels; len(values) != want {
		return nil, fmt.Errorf("chunk %v: got %d values, want %d", key, len(values), want)
	}
	return &Data{key: key, res: res, values: values}, nil
}

// Key returns the chunk identity.
func (d *Data) Key() Key { return d.key }

// Resolution returns the grid side length in pixels.
func (d *Data) Resolution() int { return d.res }

// Values returns the backing slice. Callers must not modify it; use Set.
func (d *Data) Values() []float32 { return d.values }

func (d *Data) index(x, y int, c Channel) int {
	return (y*d.res+x)*NumChannels + int(c)
}

// At returns channel c of pixel (x, y).
func (d *Data) At(x, y int, c Channel) float32 {
	return d.values[d.index(x, y, c)]
}

// Pixel returns all channels of pixel (x, y).
func (d *Data) Pixel(x, y int) [NumChannels]float32 {
	var px [NumChannels]float32
	i := d.index(x, y, 0)
	copy(px[:], d.values[i:i+NumChannels])
	return px
}

// Set stores v, clamped to [0, 1], and marks the chunk dirty.
func (d *Data) Set(x, y int, c Channel, v float32) {
	d.values[d.index(x, y, c)] = clamp01(v)
	d.dirty = true
}

// IsDirty reports whether the chunk holds changes not yet confirmed on disk.
func (d *Data) IsDirty() bool { return d.dirty }

// MarkDirty flags the chunk as needing a save.
func (d *Data) MarkDirty() { d.dirty = true }

// MarkClean clears the dirty flag. Only call after a successful save.
func (d *Data) MarkClean() { d.dirty = false }

// Equal reports whether two chunks have the same key, resolution and values.
// The dirty flag is ignored.
func (d *Data) Equal(other *Data) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.key != other.key || d.res != other.res || len(d.values) != len(other.values) {
		return false
	}
	for i, v := range d.values {
		if v != other.values[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy, including the dirty flag.
func (d *Data) Clone() *Data {
	values := make([]float32, len(d.values))
	copy(values, d.values)
	return &Data{key: d.key, res: d.res, values: values, dirty: d.dirty}
}

func clamp01(v float32) float32 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
