package output

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/siohaza/mapmaker/pkg/grid"
)

type stop struct {
	offset float64
	color  color.RGBA
}

// Ramp interpolates colors between sorted stops. Offsets outside the ramp
// are clamped to the first or last stop.
type Ramp struct {
	stops []stop
}

func (r *Ramp) Add(offset float64, c color.RGBA) {
	i := sort.Search(len(r.stops), func(i int) bool { return r.stops[i].offset > offset })
	r.stops = append(r.stops, stop{})
	copy(r.stops[i+1:], r.stops[i:])
	r.stops[i] = stop{offset: offset, color: c}
}

func (r *Ramp) At(offset float64) color.RGBA {
	if len(r.stops) == 0 {
		return color.RGBA{A: 0xFF}
	}
	if offset <= r.stops[0].offset {
		return r.stops[0].color
	}

	for i := 1; i < len(r.stops); i++ {
		hi := r.stops[i]
		if offset <= hi.offset {
			lo := r.stops[i-1]
			return mix(lo.color, hi.color, (offset-lo.offset)/(hi.offset-lo.offset))
		}
	}
	return r.stops[len(r.stops)-1].color
}

// BasicRamp goes from deep water through the shore at 0.5 up to snow.
func BasicRamp() *Ramp {
	r := &Ramp{}
	r.Add(0.000, color.RGBA{2, 43, 68, 0xFF})
	r.Add(0.250, color.RGBA{9, 62, 92, 0xFF})
	r.Add(0.490, color.RGBA{17, 82, 112, 0xFF})
	r.Add(0.500, color.RGBA{69, 108, 118, 0xFF})
	r.Add(0.501, color.RGBA{42, 102, 41, 0xFF})
	r.Add(0.750, color.RGBA{115, 128, 77, 0xFF})
	r.Add(0.850, color.RGBA{153, 143, 92, 0xFF})
	r.Add(0.950, color.RGBA{179, 179, 179, 0xFF})
	r.Add(1.000, color.RGBA{255, 255, 255, 0xFF})
	return r
}

func mix(a, b color.RGBA, t float64) color.RGBA {
	ch := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{ch(a.R, b.R), ch(a.G, b.G), ch(a.B, b.B), ch(a.A, b.A)}
}

// seaOffset moves seaLevel onto the ramp's shore at 0.5.
func seaOffset(v, seaLevel float64) float64 {
	if seaLevel <= 0 || seaLevel >= 1 {
		return v
	}
	if v < seaLevel {
		return v / seaLevel * 0.5
	}
	return (v-seaLevel)/(1-seaLevel)*0.5 + 0.5
}

// Colorize paints a normalized heightmap with the ramp, shore at seaLevel.
func Colorize(h *grid.HeightMap, r *Ramp, seaLevel float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, h.Width(), h.Height()))
	for y := 0; y < h.Height(); y++ {
		for x := 0; x < h.Width(); x++ {
			img.SetRGBA(x, y, r.At(seaOffset(h.Get(x, y), seaLevel)))
		}
	}
	return img
}

type vec3 struct{ x, y, z float64 }

func (a vec3) sub(b vec3) vec3 { return vec3{a.x - b.x, a.y - b.y, a.z - b.z} }

func (a vec3) cross(b vec3) vec3 {
	return vec3{a.y*b.z - a.z*b.y, a.z*b.x - a.x*b.z, a.x*b.y - a.y*b.x}
}

var (
	light      = vec3{-1, -1, 0}
	shadowTint = color.RGBA{0x33, 0x11, 0x33, 0xFF}
	sunTint    = color.RGBA{0xFF, 0xFF, 0xCC, 0xFF}
)

// Shade darkens land facing away from a north-west light and brightens land
// facing it. Cells below seaLevel are left as they are.
func Shade(img *image.RGBA, h *grid.HeightMap, seaLevel float64) {
	w, ht := h.Width(), h.Height()
	at := func(x, y int) vec3 { return vec3{float64(x), float64(y), h.Get(x, y)} }

	for y := 0; y < ht; y++ {
		for x := 0; x < w; x++ {
			if h.Get(x, y) < seaLevel {
				continue
			}

			p := at(x, y)
			var n vec3
			count := 0
			add := func(v vec3) {
				n.x += v.x
				n.y += v.y
				n.z += v.z
				count++
			}

			if x > 0 && y > 0 {
				add(p.sub(at(x-1, y)).cross(p.sub(at(x, y-1))))
			}
			if x > 0 && y < ht-1 {
				add(p.sub(at(x, y+1)).cross(p.sub(at(x-1, y))))
			}
			if x < w-1 && y > 0 {
				add(p.sub(at(x, y-1)).cross(p.sub(at(x+1, y))))
			}
			if x < w-1 && y < ht-1 {
				add(p.sub(at(x+1, y)).cross(p.sub(at(x, y+1))))
			}
			if count == 0 {
				continue
			}

			length := math.Sqrt(n.x*n.x + n.y*n.y + n.z*n.z)
			d := 0.5
			if length > 0 {
				d += 35 * (light.x*n.x + light.y*n.y + light.z*n.z) / length
			}
			d = min(max(d, 0), 1)

			c := img.RGBAAt(x, y)
			if d < 0.5 {
				img.SetRGBA(x, y, mix(mix(c, shadowTint, 0.7), c, 2*d))
			} else {
				img.SetRGBA(x, y, mix(c, mix(c, sunTint, 0.3), 2*d-1))
			}
		}
	}
}
