// Package terrain synthesizes heightmaps and reshapes them with cheap
// per-cell operators. Every function returns a fresh map.
package terrain

import (
	"math/rand/v2"

	"github.com/siohaza/mapmaker/pkg/grid"
)

type Generator interface {
	Generate(rng *rand.Rand, width, height int) *grid.HeightMap
}

// NewRand returns the seeded source threaded through generators and kernels.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

// Flat produces an all-zero map without touching the random source.
type Flat struct{}

func (Flat) Generate(_ *rand.Rand, width, height int) *grid.HeightMap {
	return grid.NewHeightMap(width, height)
}

func uniform(rng *rand.Rand, amplitude float64) float64 {
	return (rng.Float64()*2 - 1) * amplitude
}

// workingSize is the smallest power of two s with s+1 >= max(width, height).
func workingSize(width, height int) int {
	size := 1
	for size+1 < width || size+1 < height {
		size *= 2
	}
	return size
}
