package terrain

import (
	"math/rand/v2"

	"github.com/siohaza/mapmaker/pkg/grid"
)

// DiamondSquare seeds the corners of a (2^n+1)^2 buffer and refines it by
// alternating diamond and square midpoint passes.
type DiamondSquare struct {
	NE, NW, SE, SW float64
}

func NewDiamondSquare(corners [4]float64) DiamondSquare {
	return DiamondSquare{NE: corners[0], NW: corners[1], SE: corners[2], SW: corners[3]}
}

// UniformDiamondSquare seeds the four corners with the same value.
func UniformDiamondSquare(value float64) DiamondSquare {
	return DiamondSquare{NE: value, NW: value, SE: value, SW: value}
}

// Generate consumes one uniform draw per refined cell: the diamond pass first,
// then the square pass (rows of x = d/2 + k·d, then rows of x = k·d), each
// with x as the outer loop and ascending coordinates. The perturbation
// amplitude equals the distance to the averaged neighbours.
func (ds DiamondSquare) Generate(rng *rand.Rand, width, height int) *grid.HeightMap {
	d := workingSize(width, height)
	size := d + 1
	m := grid.NewHeightMap(size, size)

	m.Put(0, 0, ds.NE)
	m.Put(0, d, ds.NW)
	m.Put(d, 0, ds.SE)
	m.Put(d, d, ds.SW)

	for d >= 2 {
		h := d / 2

		for x := h; x < size; x += d {
			for y := h; y < size; y += d {
				diamond(rng, m, x, y, h)
			}
		}

		for x := h; x < size; x += d {
			for y := 0; y < size; y += d {
				square(rng, m, x, y, h)
			}
		}

		for x := 0; x < size; x += d {
			for y := h; y < size; y += d {
				square(rng, m, x, y, h)
			}
		}

		d = h
	}

	return centered(m, width, height)
}

func diamond(rng *rand.Rand, m *grid.HeightMap, x, y, h int) {
	avg := (m.Get(x-h, y-h) + m.Get(x-h, y+h) + m.Get(x+h, y-h) + m.Get(x+h, y+h)) / 4
	m.Put(x, y, avg+uniform(rng, float64(h)))
}

func square(rng *rand.Rand, m *grid.HeightMap, x, y, h int) {
	sum := 0.0
	n := 0

	if x >= h {
		sum += m.Get(x-h, y)
		n++
	}
	if x+h < m.Width() {
		sum += m.Get(x+h, y)
		n++
	}
	if y >= h {
		sum += m.Get(x, y-h)
		n++
	}
	if y+h < m.Height() {
		sum += m.Get(x, y+h)
		n++
	}

	m.Put(x, y, sum/float64(n)+uniform(rng, float64(h)))
}

func centered(m *grid.HeightMap, width, height int) *grid.HeightMap {
	sub, err := m.Submap((m.Width()-width)/2, (m.Height()-height)/2, width, height)
	if err != nil {
		// the working buffer is never smaller than the request
		panic(err)
	}
	return sub
}
