package noise

import (
	"math/rand/v2"

	"github.com/aquilax/go-perlin"
)

const (
	perlinAlpha = 2
	perlinBeta  = 2
)

// Gradient is single-octave Perlin noise; octaves are summed by the fractal generator.
type Gradient struct {
	p *perlin.Perlin
}

// NewGradient consumes one value from rng for the permutation seed.
func NewGradient(rng *rand.Rand) *Gradient {
	return &Gradient{p: perlin.NewPerlin(perlinAlpha, perlinBeta, 1, rng.Int64())}
}

func (g *Gradient) Noise(x, y float64) float64 {
	return g.p.Noise2D(x, y)
}
