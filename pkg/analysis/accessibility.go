package analysis

import "github.com/siohaza/mapmaker/pkg/grid"

// Accessibility keeps the largest 4-connected component of set cells.
// Components are discovered in row-major order and the first one wins ties.
func Accessibility(m *grid.BinaryMap) *grid.BinaryMap {
	label := make([]int, m.Len())
	queue := make([]int, 0, 64)

	best, bestSize := 0, 0
	next := 0
	for i, set := range m.Cells() {
		if !set || label[i] != 0 {
			continue
		}
		next++
		label[i] = next
		size := 0

		queue = append(queue[:0], i)
		for len(queue) > 0 {
			c := queue[0]
			queue = queue[1:]
			size++

			x, y := m.Position(c)
			m.Visit4(x, y, func(nx, ny int) {
				n := m.Index(nx, ny)
				if m.Get(nx, ny) && label[n] == 0 {
					label[n] = next
					queue = append(queue, n)
				}
			})
		}

		if size > bestSize {
			best, bestSize = next, size
		}
	}

	out := grid.NewLike[bool](m)
	if bestSize == 0 {
		return out
	}
	for i, l := range label {
		out.Cells()[i] = l == best
	}
	return out
}
