package grid

var (
	offsets4 = [4][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}
	offsets8 = [8][2]int{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}
)

// Visit4 calls fn for each orthogonal neighbour of (x, y) inside the grid.
// Neighbours outside the rectangle are skipped, there is no wraparound.
func (g *Grid[T]) Visit4(x, y int, fn func(nx, ny int)) {
	for _, o := range offsets4 {
		nx, ny := x+o[0], y+o[1]
		if nx >= 0 && ny >= 0 && nx < g.width && ny < g.height {
			fn(nx, ny)
		}
	}
}

// Visit8 calls fn for each of the up to 8 surrounding cells inside the grid,
// in row-major order.
func (g *Grid[T]) Visit8(x, y int, fn func(nx, ny int)) {
	for _, o := range offsets8 {
		nx, ny := x+o[0], y+o[1]
		if nx >= 0 && ny >= 0 && nx < g.width && ny < g.height {
			fn(nx, ny)
		}
	}
}
