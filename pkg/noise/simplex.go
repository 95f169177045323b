package noise

import (
	"math/rand/v2"

	"github.com/ojrac/opensimplex-go"
)

type Simplex struct {
	n opensimplex.Noise
}

// NewSimplex consumes one value from rng for the lattice seed.
func NewSimplex(rng *rand.Rand) *Simplex {
	return &Simplex{n: opensimplex.New(rng.Int64())}
}

func (s *Simplex) Noise(x, y float64) float64 {
	return s.n.Eval2(x, y)
}
