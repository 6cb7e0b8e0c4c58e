// Package gen produces chunk grids from coherent noise.
//
// Generation is a pure function of (seed, params, key): a chunk regenerated
// after eviction is bit-for-bit identical to the one that was dropped.
package gen

import (
	"fmt"
	"math"

	"github.com/ojrac/opensimplex-go"

	"github.com/Faultbox/terrastream/internal/world/chunk"
)

// Params controls sampling density and the fractal noise shape.
type Params struct {
	Resolution  int     // grid side in pixels
	BaseScale   float64 // world-noise units per pixel at level 0
	Octaves     int     // octaves of the height field
	Persistence float64 // amplitude falloff per octave
	Lacunarity  float64 // frequency gain per octave
}

// DefaultParams returns the stock generation settings.
func DefaultParams() Params {
	return Params{
		Resolution:  64,
		BaseScale:   0.02,
		Octaves:     4,
		Persistence: 0.5,
		Lacunarity:  2.0,
	}
}

// Validate checks params for values the sampler cannot use.
func (p Params) Validate() error {
	switch {
	case p.Resolution <= 0 || p.Resolution > chunk.MaxResolution:
		return fmt.Errorf("resolution %d out of range [1, %d]", p.Resolution, chunk.MaxResolution)
	case !(p.BaseScale > 0) || math.IsInf(p.BaseScale, 0):
		return fmt.Errorf("base scale must be positive, got %v", p.BaseScale)
	case p.Octaves <= 0:
		return fmt.Errorf("octaves must be positive, got %d", p.Octaves)
	case !(p.Persistence > 0):
		return fmt.Errorf("persistence must be positive, got %v", p.Persistence)
	case !(p.Lacunarity > 0):
		return fmt.Errorf("lacunarity must be positive, got %v", p.Lacunarity)
	}
	return nil
}

// layer describes how one channel samples the shared noise field.
// offset moves the channel to an unrelated region of noise space.
type layer struct {
	offset  float64
	scale   float64
	octaves int
}

// Generator samples chunks. It holds no mutable state after construction
// and may be shared.
type Generator struct {
	seed   int64
	params Params
	noise  opensimplex.Noise
	layers [chunk.NumChannels]layer
}

// New creates a generator for seed. It returns an error if params are invalid.
func New(seed int64, p Params) (*Generator, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("generator params: %w", err)
	}
	g := &Generator{
		seed:   seed,
		params: p,
		noise:  opensimplex.New(seed),
	}
	g.layers = [chunk.NumChannels]layer{
		chunk.Height:         {offset: 0, scale: 1.0, octaves: p.Octaves},
		chunk.GroundTemp:     {offset: 50000, scale: 0.5, octaves: 2},
		chunk.GroundHumidity: {offset: 100000, scale: 0.5, octaves: 2},
		chunk.Biomass:        {offset: 150000, scale: 2.0, octaves: 1},
		chunk.WindX:          {offset: 200000, scale: 0.3, octaves: 2},
		chunk.WindY:          {offset: 250000, scale: 0.3, octaves: 2},
		chunk.AirTemp:        {offset: 300000, scale: 0.4, octaves: 2},
		chunk.AirHumidity:    {offset: 350000, scale: 1.5, octaves: 2},
	}
	return g, nil
}

// Seed returns the world seed.
func (g *Generator) Seed() int64 { return g.seed }

// Resolution returns the side length of generated chunks in pixels.
func (g *Generator) Resolution() int { return g.params.Resolution }

// Params returns the sampling parameters.
func (g *Generator) Params() Params { return g.params }

// Step returns the world-noise distance between adjacent pixels at level.
func (g *Generator) Step(level int) float64 {
	return math.Ldexp(g.params.BaseScale, -level)
}

// Generate samples the chunk at key. The result is marked dirty.
// It panics if key is invalid.
func (g *Generator) Generate(key chunk.Key) *chunk.Data {
	key.MustValidate()

	res := g.params.Resolution
	step := g.Step(key.Level)
	baseX := float64(key.X) * float64(res) * step
	baseY := float64(key.Y) * float64(res) * step

	values := make([]float32, res*res*chunk.NumChannels)
	i := 0
	for y := 0; y < res; y++ {
		wy := baseY + float64(y)*step
		for x := 0; x < res; x++ {
			wx := baseX + float64(x)*step
			g.samplePixel(wx, wy, values[i:i+chunk.NumChannels])
			i += chunk.NumChannels
		}
	}

	d, err := chunk.FromValues(key, res, values)
	if err != nil {
		// Resolution was validated in New and the key above.
		panic(err)
	}
	d.MarkDirty()
	return d
}

// samplePixel writes every channel for world point (wx, wy) into px.
func (g *Generator) samplePixel(wx, wy float64, px []float32) {
	for c, l := range g.layers {
		n := g.fbm((wx+l.offset)*l.scale, (wy+l.offset)*l.scale, l.octaves)
		v := (n + 1) / 2
		if chunk.Channel(c) == chunk.Height {
			v = shapeHeight(v)
		}
		px[c] = float32(clamp01(v))
	}
}

// fbm sums octaves of simplex noise, normalised back to roughly [-1, 1].
func (g *Generator) fbm(x, y float64, octaves int) float64 {
	amplitude, frequency := 1.0, 1.0
	sum, norm := 0.0, 0.0
	for i := 0; i < octaves; i++ {
		sum += g.noise.Eval2(x*frequency, y*frequency) * amplitude
		norm += amplitude
		amplitude *= g.params.Persistence
		frequency *= g.params.Lacunarity
	}
	return sum / norm
}

// shapeHeight flattens terrain near sea level and steepens the extremes:
// f(s) = (s^3 + s) / 2 on s in [-1, 1].
func shapeHeight(h float64) float64 {
	s := 2*h - 1
	f := (s*s*s + s) / 2
	return (f + 1) / 2
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
