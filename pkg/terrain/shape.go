package terrain

import (
	"math"
	"slices"

	"github.com/siohaza/mapmaker/pkg/grid"
)

// Normalize rescales h linearly onto [0, 1]. A constant map becomes all zeros.
func Normalize(h *grid.HeightMap) *grid.HeightMap {
	out := grid.NewLike[float64](h)
	if h.Len() == 0 {
		return out
	}

	lo, hi := slices.Min(h.Cells()), slices.Max(h.Cells())
	span := hi - lo
	if span == 0 {
		return out
	}

	dst := out.Cells()
	for i, v := range h.Cells() {
		dst[i] = (v - lo) / span
	}
	return out
}

// SeaLevel remaps a normalized map so that level lands on 0.5, stretching
// [0, level) onto [0, 0.5) and [level, 1] onto [0.5, 1].
type SeaLevel struct {
	Level float64
}

func (s SeaLevel) Apply(h *grid.HeightMap) *grid.HeightMap {
	l := s.Level
	return grid.Map(h, func(v float64) float64 {
		if v < l {
			return v / l * 0.5
		}
		return (v-l)/(1-l)*0.5 + 0.5
	})
}

// Islandize fades heights towards zero inside a band of Border cells along
// the edges.
type Islandize struct {
	Border float64
}

func (is Islandize) Apply(h *grid.HeightMap) *grid.HeightMap {
	w, ht := h.Width(), h.Height()
	border := is.Border
	out := h.Clone()
	if border <= 0 {
		return out
	}

	edge := func(i, n int) float64 {
		switch {
		case float64(i) < border:
			return float64(i) / border
		case float64(i+1)+border > float64(n):
			return float64(n-1-i) / border
		}
		return 1
	}

	for y := range ht {
		cy := edge(y, ht)
		for x := range w {
			coeff := edge(x, w) * cy
			if coeff < 1 {
				out.Put(x, y, out.Get(x, y)*math.Sin(math.Sqrt(coeff)*math.Pi/2))
			}
		}
	}
	return out
}

// Gaussize multiplies by a centred gaussian whose standard deviation is
// Spread cells.
type Gaussize struct {
	Spread float64
}

func (g Gaussize) Apply(h *grid.HeightMap) *grid.HeightMap {
	w, ht := h.Width(), h.Height()
	sigma := g.Spread
	out := h.Clone()
	if sigma <= 0 {
		return out
	}

	cx, cy := float64(w-1)/2, float64(ht-1)/2
	for y := range ht {
		for x := range w {
			dx, dy := float64(x)-cx, float64(y)-cy
			out.Put(x, y, out.Get(x, y)*math.Exp(-(dx*dx+dy*dy)/(2*sigma*sigma)))
		}
	}
	return out
}

// Flatten raises every height to Factor; factors above 1 widen the lowlands.
type Flatten struct {
	Factor float64
}

func (f Flatten) Apply(h *grid.HeightMap) *grid.HeightMap {
	return grid.Map(h, func(v float64) float64 {
		return math.Pow(max(v, 0), f.Factor)
	})
}

// Smooth replaces every cell by the mean of its in-bounds 3x3 window,
// Iterations times.
type Smooth struct {
	Iterations int
}

func (s Smooth) Apply(h *grid.HeightMap) *grid.HeightMap {
	src := h.Clone()
	dst := grid.NewLike[float64](h)

	for range s.Iterations {
		grid.ParallelRows(src.Height(), func(y0, y1 int) {
			for y := y0; y < y1; y++ {
				for x := 0; x < src.Width(); x++ {
					sum := src.Get(x, y)
					n := 1
					src.Visit8(x, y, func(nx, ny int) {
						sum += src.Get(nx, ny)
						n++
					})
					dst.Put(x, y, sum/float64(n))
				}
			}
		})
		src, dst = dst, src
	}
	return src
}
