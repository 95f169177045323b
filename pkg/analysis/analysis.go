// Package analysis derives masks and scores from heightmaps: slope, sea and
// steepness cutoffs, footprint reachability, and connectivity.
package analysis

import (
	"math"

	"github.com/siohaza/mapmaker/pkg/grid"
)

// Slope returns, per cell, the largest absolute height difference with any
// in-bounds Moore neighbour.
func Slope(h *grid.HeightMap) *grid.HeightMap {
	out := grid.NewLike[float64](h)
	grid.ParallelRows(h.Height(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < h.Width(); x++ {
				v := h.Get(x, y)
				steepest := 0.0
				h.Visit8(x, y, func(nx, ny int) {
					steepest = max(steepest, math.Abs(v-h.Get(nx, ny)))
				})
				out.Put(x, y, steepest)
			}
		}
	})
	return out
}

// Cutoff marks the cells strictly below threshold.
func Cutoff(h *grid.HeightMap, threshold float64) *grid.BinaryMap {
	return grid.Map(h, func(v float64) bool { return v < threshold })
}

// Op combines two mask cells.
type Op func(a, b bool) bool

var (
	And    Op = func(a, b bool) bool { return a && b }
	Or     Op = func(a, b bool) bool { return a || b }
	AndNot Op = func(a, b bool) bool { return a && !b }
)

// LogicalCombine applies op cell by cell. Masks of different sizes are
// rejected with grid.ErrDimensionMismatch.
func LogicalCombine(a, b *grid.BinaryMap, op Op) (*grid.BinaryMap, error) {
	if err := grid.CheckSameSize(a, b); err != nil {
		return nil, err
	}

	out := grid.NewLike[bool](a)
	bc := b.Cells()
	for i, v := range a.Cells() {
		out.Cells()[i] = op(v, bc[i])
	}
	return out, nil
}

// Ratio is the fraction of set cells; an empty mask has ratio 0.
func Ratio(m *grid.BinaryMap) float64 {
	if m.Len() == 0 {
		return 0
	}
	n := 0
	for _, v := range m.Cells() {
		if v {
			n++
		}
	}
	return float64(n) / float64(m.Len())
}

// ErosionScore is the coefficient of variation of the slope map. Flat or
// empty maps score 0.
func ErosionScore(h *grid.HeightMap) float64 {
	slope := Slope(h).Cells()
	if len(slope) == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range slope {
		mean += v
	}
	mean /= float64(len(slope))
	if mean == 0 {
		return 0
	}

	variance := 0.0
	for _, v := range slope {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(slope))

	return math.Sqrt(variance) / mean
}
