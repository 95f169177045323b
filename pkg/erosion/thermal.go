package erosion

import "github.com/siohaza/mapmaker/pkg/grid"

// Thermal spreads material from a cell to every neighbour lower by more than
// Talus, in proportion to each drop. The cell loses Fraction·(dmax-Talus) in
// total, so the volume of the map is preserved.
type Thermal struct {
	Iterations int
	Talus      float64
	Fraction   float64
}

func (t Thermal) Apply(src *grid.HeightMap) *grid.HeightMap {
	cur := src.Clone()
	next := grid.NewLike[float64](src)
	total := make([]float64, src.Len())
	outflow := make([]float64, src.Len())

	for range t.Iterations {
		each(cur, func(x, y int) {
			i := cur.Index(x, y)
			h := cur.Get(x, y)
			dtotal, dmax := 0.0, 0.0

			neighbors(cur, x, y, func(_, nx, ny int) {
				if d := h - cur.Get(nx, ny); d > t.Talus {
					dtotal += d
					dmax = max(dmax, d)
				}
			})

			total[i] = dtotal
			if dtotal > 0 {
				outflow[i] = t.Fraction * (dmax - t.Talus)
			} else {
				outflow[i] = 0
			}
		})

		each(cur, func(x, y int) {
			i := cur.Index(x, y)
			h := cur.Get(x, y)
			v := h - outflow[i]

			neighbors(cur, x, y, func(_, nx, ny int) {
				n := cur.Index(nx, ny)
				if d := cur.Get(nx, ny) - h; d > t.Talus && total[n] > 0 {
					v += outflow[n] * d / total[n]
				}
			})
			next.Put(x, y, v)
		})

		cur, next = next, cur
	}

	return cur
}
