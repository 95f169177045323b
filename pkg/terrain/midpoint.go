package terrain

import (
	"math/rand/v2"

	"github.com/siohaza/mapmaker/pkg/grid"
)

// MidpointDisplacement refines each square from its own four corners only:
// centre, then the north, south, east and west edge midpoints, one uniform
// draw each with amplitude d.
type MidpointDisplacement struct {
	NE, NW, SE, SW float64
}

func NewMidpointDisplacement(corners [4]float64) MidpointDisplacement {
	return MidpointDisplacement{NE: corners[0], NW: corners[1], SE: corners[2], SW: corners[3]}
}

func (md MidpointDisplacement) Generate(rng *rand.Rand, width, height int) *grid.HeightMap {
	d := workingSize(width, height)
	size := d + 1
	m := grid.NewHeightMap(size, size)

	m.Put(0, 0, md.NE)
	m.Put(0, d, md.NW)
	m.Put(d, 0, md.SE)
	m.Put(d, d, md.SW)

	for d >= 2 {
		h := d / 2
		amplitude := float64(d)

		for x := h; x < size; x += d {
			for y := h; y < size; y += d {
				ne := m.Get(x-h, y-h)
				nw := m.Get(x-h, y+h)
				se := m.Get(x+h, y-h)
				sw := m.Get(x+h, y+h)

				m.Put(x, y, (ne+nw+se+sw)/4+uniform(rng, amplitude))
				m.Put(x-h, y, (ne+nw)/2+uniform(rng, amplitude))
				m.Put(x+h, y, (se+sw)/2+uniform(rng, amplitude))
				m.Put(x, y-h, (ne+se)/2+uniform(rng, amplitude))
				m.Put(x, y+h, (nw+sw)/2+uniform(rng, amplitude))
			}
		}

		d = h
	}

	return centered(m, width, height)
}
