package erosion

import "github.com/siohaza/mapmaker/pkg/grid"

// Fast moves Fraction of the steepest drop towards the lowest neighbour, but
// only when that drop does not exceed Talus.
type Fast struct {
	Iterations int
	Talus      float64
	Fraction   float64
}

func (f Fast) Apply(src *grid.HeightMap) *grid.HeightMap {
	cur := src.Clone()
	next := grid.NewLike[float64](src)
	target := make([]int, src.Len())
	amount := make([]float64, src.Len())

	for range f.Iterations {
		each(cur, func(x, y int) {
			i := cur.Index(x, y)
			h := cur.Get(x, y)
			dmax := 0.0
			to := -1

			neighbors(cur, x, y, func(_, nx, ny int) {
				if d := h - cur.Get(nx, ny); d > dmax {
					dmax = d
					to = cur.Index(nx, ny)
				}
			})

			if to >= 0 && dmax <= f.Talus {
				target[i] = to
				amount[i] = f.Fraction * dmax
			} else {
				target[i] = -1
				amount[i] = 0
			}
		})

		each(cur, func(x, y int) {
			i := cur.Index(x, y)
			v := cur.Get(x, y) - amount[i]

			neighbors(cur, x, y, func(_, nx, ny int) {
				if n := cur.Index(nx, ny); target[n] == i {
					v += amount[n]
				}
			})
			next.Put(x, y, v)
		})

		cur, next = next, cur
	}

	return cur
}
