package terrain

import (
	"math/rand/v2"

	"github.com/siohaza/mapmaker/pkg/grid"
)

// Hills piles Count paraboloids whose radius is drawn in
// [RadiusMin, RadiusMax]·max(width, height).
type Hills struct {
	Count     int
	RadiusMin float64
	RadiusMax float64
}

// Generate draws radius, then x, then y for every hill.
func (h Hills) Generate(rng *rand.Rand, width, height int) *grid.HeightMap {
	m := grid.NewHeightMap(width, height)

	rmin, rmax := h.RadiusMin, h.RadiusMax
	if rmin > rmax {
		rmin, rmax = rmax, rmin
	}
	size := float64(max(width, height))
	rmin *= size
	rmax *= size

	for k := 0; k < h.Count; k++ {
		radius := rmin + rng.Float64()*(rmax-rmin)
		radius2 := radius * radius

		x := -radius/2 + rng.Float64()*(float64(width)+radius)
		y := -radius/2 + rng.Float64()*(float64(height)+radius)

		imin := max(int(x-radius-1), 0)
		imax := min(int(x+radius+1), width)
		jmin := max(int(y-radius-1), 0)
		jmax := min(int(y+radius+1), height)

		for j := jmin; j < jmax; j++ {
			for i := imin; i < imax; i++ {
				dx := x - float64(i)
				dy := y - float64(j)
				if v := radius2 - (dx*dx + dy*dy); v > 0 {
					m.Put(i, j, m.Get(i, j)+v)
				}
			}
		}
	}

	return m
}
