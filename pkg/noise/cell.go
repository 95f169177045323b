package noise

import (
	"math"
	"math/rand/v2"
	"slices"
)

type point struct {
	x, y float64
}

// Cell is Worley noise on the unit torus: the value is a weighted sum of the
// distances to the closest feature points.
type Cell struct {
	distance Distance
	coeffs   []float64
	points   []point
}

// NewCell draws count feature points (x then y) and mirrors each one into the
// three neighbouring tiles closest to it so that distances wrap.
func NewCell(rng *rand.Rand, count int, distance Distance, coeffs []float64) *Cell {
	if distance == nil {
		distance = Euclidean
	}

	points := make([]point, 0, count*4)
	for i := 0; i < count; i++ {
		x := rng.Float64()
		y := rng.Float64()

		dx, dy := 1.0, 1.0
		if x >= 0.5 {
			dx = -1
		}
		if y >= 0.5 {
			dy = -1
		}
		points = append(points,
			point{x, y},
			point{x + dx, y},
			point{x, y + dy},
			point{x + dx, y + dy},
		)
	}

	c := slices.Clone(coeffs)
	if len(c) == 0 {
		c = []float64{1}
	}
	if len(c) > len(points) {
		c = c[:len(points)]
	}

	return &Cell{distance: distance, coeffs: c, points: points}
}

func (c *Cell) Noise(x, y float64) float64 {
	if len(c.points) == 0 {
		return 0
	}

	rx := x - math.Floor(x)
	ry := y - math.Floor(y)

	dists := make([]float64, len(c.points))
	for i, p := range c.points {
		dists[i] = c.distance(rx, ry, p.x, p.y)
	}
	slices.Sort(dists)

	value := 0.0
	for i, coeff := range c.coeffs {
		value += coeff * dists[i]
	}
	return value
}
