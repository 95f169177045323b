package erosion

import "github.com/siohaza/mapmaker/pkg/grid"

// Hydraulic simulates rain dissolving terrain, water flowing downhill with
// its sediment, and evaporation depositing what the remaining water cannot
// carry. Water and sediment persist across iterations.
type Hydraulic struct {
	Iterations  int
	Rain        float64
	Solubility  float64
	Evaporation float64
	Capacity    float64
}

func (hy Hydraulic) Apply(src *grid.HeightMap) *grid.HeightMap {
	terrain := src.Clone()
	water := grid.NewLike[float64](src)
	sediment := grid.NewLike[float64](src)
	nextWater := grid.NewLike[float64](src)
	nextSediment := grid.NewLike[float64](src)

	alt := make([]float64, src.Len())
	total := make([]float64, src.Len())
	moved := make([]float64, src.Len())

	for range hy.Iterations {
		// rain and dissolution
		for i, h := range terrain.Cells() {
			w := water.Cells()[i] + hy.Rain
			dissolved := hy.Solubility * w
			water.Cells()[i] = w
			terrain.Cells()[i] = h - dissolved
			sediment.Cells()[i] += dissolved
			alt[i] = terrain.Cells()[i] + w
		}

		// every cell sends min(water, alt - mean lower alt) downhill
		each(terrain, func(x, y int) {
			i := terrain.Index(x, y)
			dtotal, atotal := 0.0, 0.0
			n := 0

			neighbors(terrain, x, y, func(_, nx, ny int) {
				a := alt[terrain.Index(nx, ny)]
				if d := alt[i] - a; d > 0 {
					dtotal += d
					atotal += a
					n++
				}
			})

			total[i] = dtotal
			moved[i] = 0
			if n > 0 {
				moved[i] = min(water.Get(x, y), alt[i]-atotal/float64(n))
			}
		})

		each(terrain, func(x, y int) {
			i := terrain.Index(x, y)
			w := water.Get(x, y)
			s := sediment.Get(x, y)

			if w > 0 && moved[i] > 0 {
				w, s = w-moved[i], s-s*moved[i]/water.Get(x, y)
			}

			neighbors(terrain, x, y, func(_, nx, ny int) {
				n := terrain.Index(nx, ny)
				d := alt[n] - alt[i]
				if d <= 0 || total[n] <= 0 || moved[n] <= 0 {
					return
				}
				dw := moved[n] * d / total[n]
				w += dw
				if wn := water.Get(nx, ny); wn > 0 {
					s += sediment.Get(nx, ny) * dw / wn
				}
			})

			nextWater.Put(x, y, w)
			nextSediment.Put(x, y, s)
		})

		water, nextWater = nextWater, water
		sediment, nextSediment = nextSediment, sediment

		// evaporation and deposition
		for i, w := range water.Cells() {
			w *= 1 - hy.Evaporation
			water.Cells()[i] = w

			if excess := sediment.Cells()[i] - hy.Capacity*w; excess > 0 {
				sediment.Cells()[i] -= excess
				terrain.Cells()[i] += excess
			}
		}
	}

	return terrain
}
