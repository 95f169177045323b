// classicgen generator
// original by Tom Dobrowolski and Ken Silverman
// https://web.archive.org/web/20170223015419/http://moonedit.com/tom/vox1_en.htm#genland

package classicgen

import (
	"math"
	"math/rand/v2"

	"github.com/siohaza/mapmaker/pkg/grid"
)

const (
	octMax = 10

	// lattice span sampled across the whole map, independent of its resolution
	span = 4.0

	terrainZ = 9.5
	riverZ   = 13.2
)

type noiseContext struct {
	noisep   [512]uint8
	noisep15 [512]uint8
	seed     uint32
}

func (nc *noiseContext) getRandom() uint32 {
	nc.seed = nc.seed*214013 + 2531011
	return (nc.seed >> 16) & 0x7FFF
}

func newNoiseContext(seed uint32) *noiseContext {
	nc := &noiseContext{seed: seed}
	for i := 255; i >= 0; i-- {
		nc.noisep[i] = uint8(i)
	}
	for i := 255; i > 0; i-- {
		j := (nc.getRandom() * uint32(i+1)) >> 15
		nc.noisep[i], nc.noisep[j] = nc.noisep[j], nc.noisep[i]
	}
	for i := 255; i >= 0; i-- {
		nc.noisep[i+256] = nc.noisep[i]
	}
	for i := 511; i >= 0; i-- {
		nc.noisep15[i] = nc.noisep[i] & 15
	}
	return nc
}

func fgrad(h int, x, y, z float64) float64 {
	switch h {
	case 0, 12:
		return x + y
	case 1, 13:
		return -x + y
	case 2:
		return x - y
	case 3:
		return -x - y
	case 4:
		return x + z
	case 5:
		return -x + z
	case 6:
		return x - z
	case 7:
		return -x - z
	case 8:
		return y + z
	case 9:
		return -y + z
	case 10, 14:
		return y - z
	case 11, 15:
		return -y - z
	}
	return 0
}

// noise3d never mutates the context, so concurrent sampling is safe.
func (nc *noiseContext) noise3d(fx, fy, fz float64, mask int) float64 {
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	z0 := int(math.Floor(fz))
	px := fx - float64(x0)
	py := fy - float64(y0)
	pz := fz - float64(z0)

	x0 &= mask
	x1 := (x0 + 1) & mask
	y0 &= mask
	y1 := (y0 + 1) & mask
	z0 &= mask
	z1 := (z0 + 1) & mask

	i := int(nc.noisep[x0])
	a0 := int(nc.noisep[i+y0])
	a2 := int(nc.noisep[i+y1])
	i = int(nc.noisep[x1])
	a1 := int(nc.noisep[i+y0])
	a3 := int(nc.noisep[i+y1])

	f0 := fgrad(int(nc.noisep15[a0+z0]), px, py, pz)
	f1 := fgrad(int(nc.noisep15[a1+z0]), px-1, py, pz)
	f2 := fgrad(int(nc.noisep15[a2+z0]), px, py-1, pz)
	f3 := fgrad(int(nc.noisep15[a3+z0]), px-1, py-1, pz)
	f4 := fgrad(int(nc.noisep15[a0+z1]), px, py, pz-1)
	f5 := fgrad(int(nc.noisep15[a1+z1]), px-1, py, pz-1)
	f6 := fgrad(int(nc.noisep15[a2+z1]), px, py-1, pz-1)
	f7 := fgrad(int(nc.noisep15[a3+z1]), px-1, py-1, pz-1)

	pz = (3.0 - 2.0*pz) * pz * pz
	py = (3.0 - 2.0*py) * py * py
	px = (3.0 - 2.0*px) * px * px

	f0 = (f4-f0)*pz + f0
	f1 = (f5-f1)*pz + f1
	f2 = (f6-f2)*pz + f2
	f3 = (f7-f3)*pz + f3
	f0 = (f2-f0)*py + f0
	f1 = (f3-f1)*py + f1

	return (f1-f0)*px + f0
}

// Kernel exposes the classic 3D gradient noise as a 2D field on the terrain plane.
type Kernel struct {
	nc *noiseContext
}

// NewKernel consumes one value from rng for the LCG seed.
func NewKernel(rng *rand.Rand) *Kernel {
	return &Kernel{nc: newNoiseContext(rng.Uint32())}
}

func (k *Kernel) Noise(x, y float64) float64 {
	return k.nc.noise3d(x, y, terrainZ, 255)
}

// Generator reproduces the classic voxel landscape: a self-modulating octave sum
// carved by a sinusoidal river band. Heights grow with altitude.
type Generator struct {
	Octaves     int
	Persistence float64
}

func DefaultGenerator() Generator {
	return Generator{Octaves: octMax, Persistence: 0.4}
}

func (g Generator) Generate(rng *rand.Rand, width, height int) *grid.HeightMap {
	nc := newNoiseContext(rng.Uint32())

	octaves := g.Octaves
	if octaves <= 0 || octaves > octMax {
		octaves = octMax
	}
	persistence := g.Persistence
	if persistence <= 0 {
		persistence = 0.4
	}

	var amplut [octMax]float64
	var msklut [octMax]int
	d := 1.0
	for i := 0; i < octaves; i++ {
		amplut[i] = d
		d *= persistence
		msklut[i] = min((1<<(i+2))-1, 255)
	}

	m := grid.NewHeightMap(width, height)
	grid.ParallelRows(height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < width; x++ {
				dx := float64(x) / float64(width) * span
				dy := float64(y) / float64(height) * span

				land := 0.0
				river := 0.0
				for o := 0; o < octaves; o++ {
					land += nc.noise3d(dx, dy, terrainZ, msklut[o]) * amplut[o] * (land*1.6 + 1.0)
					river += nc.noise3d(dx, dy, riverZ, msklut[o]) * amplut[o]
					dx *= 2
					dy *= 2
				}

				samp := land*-20.0 + 28.0
				band := math.Sin(float64(x)/float64(width)*2*math.Pi+river*4.0)*(0.5+0.02) + (0.5 - 0.02)
				band = math.Max(math.Min(band, 1), 0)

				// classic depth counts downwards from the sky, flip it into an elevation
				m.Put(x, y, -samp*band)
			}
		}
	})
	return m
}
