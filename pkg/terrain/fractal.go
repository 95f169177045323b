package terrain

import (
	"math"
	"math/rand/v2"

	"github.com/siohaza/mapmaker/pkg/grid"
	"github.com/siohaza/mapmaker/pkg/noise"
)

// Fractal sums Octaves layers of a kernel sampled on coordinates normalized to
// the map size. The result is not normalized.
type Fractal struct {
	Kernel      noise.Kernel
	Octaves     int
	Lacunarity  float64
	Persistence float64
	// Scale multiplies the normalized coordinates; zero means 1.
	Scale float64
}

// Generate does not draw from rng: the kernel already carries its seed.
func (f Fractal) Generate(_ *rand.Rand, width, height int) *grid.HeightMap {
	kernel := f.Kernel
	if kernel == nil {
		kernel = noise.Null
	}
	scale := f.Scale
	if scale == 0 {
		scale = 1
	}

	frequencies := make([]float64, f.Octaves)
	amplitudes := make([]float64, f.Octaves)
	for k := range f.Octaves {
		frequencies[k] = math.Pow(f.Lacunarity, float64(k))
		amplitudes[k] = math.Pow(f.Persistence, float64(k))
	}

	m := grid.NewHeightMap(width, height)
	sample := func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			yf := float64(y) / float64(height) * scale
			for x := 0; x < width; x++ {
				xf := float64(x) / float64(width) * scale

				value := 0.0
				for k := range frequencies {
					value += kernel.Noise(xf*frequencies[k], yf*frequencies[k]) * amplitudes[k]
				}
				m.Put(x, y, value)
			}
		}
	}
	if s, ok := kernel.(noise.Sequential); ok && s.Sequential() {
		sample(0, height)
	} else {
		grid.ParallelRows(height, sample)
	}
	return m
}
