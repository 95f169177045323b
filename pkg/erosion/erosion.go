// Package erosion runs iterative erosion simulations over a heightmap.
//
// Each iteration first records what every cell sends out, reading only the
// heights of the previous iteration, then lets every cell collect what its
// neighbours sent. The collection order is fixed, so results do not depend
// on how rows are split between goroutines.
package erosion

import "github.com/siohaza/mapmaker/pkg/grid"

type Eroder interface {
	Apply(h *grid.HeightMap) *grid.HeightMap
}

// offsets lists the Moore neighbourhood with dx as the outer loop.
var offsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

func each(m *grid.HeightMap, fn func(x, y int)) {
	w := m.Width()
	grid.ParallelRows(m.Height(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				fn(x, y)
			}
		}
	})
}

func neighbors(m *grid.HeightMap, x, y int, fn func(k, nx, ny int)) {
	for k, o := range offsets {
		nx, ny := x+o[0], y+o[1]
		if m.Contains(nx, ny) {
			fn(k, nx, ny)
		}
	}
}
