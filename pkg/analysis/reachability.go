package analysis

import "github.com/siohaza/mapmaker/pkg/grid"

// Reachability marks every cell covered by at least one all-true size×size
// window lying fully inside the mask. Sizes below 1 are treated as 1.
func Reachability(m *grid.BinaryMap, size int) *grid.BinaryMap {
	size = max(size, 1)
	w, h := m.Width(), m.Height()
	out := grid.NewLike[bool](m)
	if size > w || size > h {
		return out
	}

	// blocked(x0, y0, x1, y1) counts unset cells in [x0, x1) × [y0, y1)
	stride := w + 1
	unset := make([]int, stride*(h+1))
	for y := range h {
		row := 0
		for x := range w {
			if !m.Get(x, y) {
				row++
			}
			unset[(y+1)*stride+x+1] = unset[y*stride+x+1] + row
		}
	}
	blocked := func(x0, y0, x1, y1 int) int {
		return unset[y1*stride+x1] - unset[y0*stride+x1] - unset[y1*stride+x0] + unset[y0*stride+x0]
	}

	// cover accumulates window corners; its prefix sum counts the windows
	// covering each cell
	cover := make([]int, stride*(h+1))
	for y := 0; y+size <= h; y++ {
		for x := 0; x+size <= w; x++ {
			if blocked(x, y, x+size, y+size) != 0 {
				continue
			}
			cover[y*stride+x]++
			cover[y*stride+x+size]--
			cover[(y+size)*stride+x]--
			cover[(y+size)*stride+x+size]++
		}
	}

	for y := range h + 1 {
		for x := range w + 1 {
			i := y*stride + x
			if x > 0 {
				cover[i] += cover[i-1]
			}
			if y > 0 {
				cover[i] += cover[i-stride]
			}
			if x > 0 && y > 0 {
				cover[i] -= cover[i-stride-1]
			}
		}
	}

	for y := range h {
		for x := range w {
			out.Put(x, y, cover[y*stride+x] > 0)
		}
	}
	return out
}
