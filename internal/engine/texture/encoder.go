package texture

import (
	"github.com/Faultbox/terrastream/internal/world/chunk"
)

// Height thresholds for the colour bands.
const (
	SeaLevel   = 0.42
	BeachLevel = 0.45
	RockLevel  = 0.72
	SnowLevel  = 0.85

	cloudThreshold = 0.6
	cloudOpacity   = 0.7
)

type rgb struct{ r, g, b float32 }

var (
	deepWater    = rgb{10, 30, 90}
	shallowWater = rgb{40, 90, 170}
	sand         = rgb{210, 200, 140}
	grass        = rgb{80, 150, 60}
	forest       = rgb{30, 90, 40}
	desert       = rgb{220, 190, 120}
	tundra       = rgb{160, 170, 150}
	rock         = rgb{120, 110, 100}
	snow         = rgb{240, 240, 245}
	cloud        = rgb{255, 255, 255}
)

// ColorEncoder maps terrain channels to a map-style colour. With Clouds set,
// air humidity is drawn as translucent white cover.
type ColorEncoder struct {
	Clouds bool
}

// Encode writes res*res RGBA8 pixels in chunk row order (bottom row first).
func (e ColorEncoder) Encode(d *chunk.Data, dst []byte) []byte {
	res := d.Resolution()
	n := res * res * 4
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]

	vals := d.Values()
	for i := 0; i < res*res; i++ {
		px := vals[i*chunk.NumChannels : (i+1)*chunk.NumChannels]
		c := terrainColor(px[chunk.Height], px[chunk.GroundTemp], px[chunk.GroundHumidity], px[chunk.Biomass])
		if e.Clouds && px[chunk.AirHumidity] > cloudThreshold {
			a := (px[chunk.AirHumidity] - cloudThreshold) / (1 - cloudThreshold) * cloudOpacity
			c = mix(c, cloud, a)
		}
		o := i * 4
		dst[o] = byte(c.r)
		dst[o+1] = byte(c.g)
		dst[o+2] = byte(c.b)
		dst[o+3] = 255
	}
	return dst
}

func terrainColor(h, temp, hum, bio float32) rgb {
	switch {
	case h < SeaLevel:
		return mix(deepWater, shallowWater, h/SeaLevel)
	case h < BeachLevel:
		return sand
	case h >= SnowLevel:
		return snow
	case h >= RockLevel:
		return rock
	case temp > 0.65 && hum < 0.35:
		return desert
	case temp < 0.25:
		return tundra
	default:
		return mix(grass, forest, bio)
	}
}

func mix(a, b rgb, t float32) rgb {
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return rgb{
		a.r + (b.r-a.r)*t,
		a.g + (b.g-a.g)*t,
		a.b + (b.b-a.b)*t,
	}
}
