// Package vxl exports heightmaps as Ace of Spades voxel maps. Every column is
// solid from its surface down to the bottom of the map, so a column is fully
// described by its top voxel and the colors of its exposed voxels.
package vxl

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/siohaza/mapmaker/pkg/grid"
)

const (
	DefaultDepth = 64
	defaultColor = 0x674028
)

type span struct {
	length     uint8
	colorStart uint8
	colorEnd   uint8
	airStart   uint8
}

func (s span) dataLength() int {
	if s.length > 0 {
		return int(s.length) * 4
	}
	return (int(s.colorEnd) + 2 - int(s.colorStart)) * 4
}

// Colorizer returns the 0xRRGGBB color of the surface at (x, y).
type Colorizer func(x, y int) uint32

type Map struct {
	width  int
	height int
	depth  int
	top    []int
	colors []uint32
}

func (m *Map) Width() int  { return m.width }
func (m *Map) Height() int { return m.height }
func (m *Map) Depth() int  { return m.depth }

// FromHeightMap quantizes a normalized heightmap to depth levels; height 1 maps
// to z = 0, the top of the map. A nil colorizer paints every column brown.
func FromHeightMap(h *grid.HeightMap, depth int, colorize Colorizer) (*Map, error) {
	if depth < 2 || depth > 256 {
		return nil, fmt.Errorf("invalid vxl depth %d", depth)
	}

	m := &Map{
		width:  h.Width(),
		height: h.Height(),
		depth:  depth,
		top:    make([]int, h.Len()),
		colors: make([]uint32, h.Len()),
	}

	bottom := float64(depth - 1)
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			v := min(max(h.Get(x, y), 0), 1)
			i := h.Index(x, y)
			m.top[i] = depth - 1 - int(math.Round(v*bottom))
			if colorize != nil {
				m.colors[i] = colorize(x, y) & 0xFFFFFF
			} else {
				m.colors[i] = defaultColor
			}
		}
	}
	return m, nil
}

// FindTopBlock returns the z of the surface voxel of a column.
func (m *Map) FindTopBlock(x, y int) int {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return m.depth - 1
	}
	return m.top[y*m.width+x]
}

// HeightMap inverts the quantization of FromHeightMap.
func (m *Map) HeightMap() *grid.HeightMap {
	h := grid.NewHeightMap(m.width, m.height)
	bottom := float64(m.depth - 1)
	for i, z := range m.top {
		h.Cells()[i] = float64(m.depth-1-z) / bottom
	}
	return h
}

// exposed is the first z below the surface hidden on all four sides.
// Neighbours wrap around the map edges.
func (m *Map) exposed(x, y int) int {
	end := m.FindTopBlock(x, y) + 1
	for _, o := range [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}} {
		nx := (x + o[0] + m.width) % m.width
		ny := (y + o[1] + m.height) % m.height
		end = max(end, m.top[ny*m.width+nx])
	}
	return min(end, m.depth)
}

// shade darkens side voxels with depth below the surface.
func shade(color uint32, below int) uint32 {
	factor := max(1-0.04*float64(below), 0.4)
	r := float64((color>>16)&0xFF) * factor
	g := float64((color>>8)&0xFF) * factor
	b := float64(color&0xFF) * factor
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func (m *Map) Write() ([]byte, error) {
	var buf bytes.Buffer

	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if err := m.writeColumn(x, y, &buf); err != nil {
				return nil, err
			}
		}
	}

	return buf.Bytes(), nil
}

// writeColumn emits a single terminal span: air above the surface, then the
// exposed voxels. The hidden interior is implied down to the bottom.
func (m *Map) writeColumn(x, y int, w io.Writer) error {
	top := m.FindTopBlock(x, y)
	end := m.exposed(x, y)

	s := span{
		length:     0,
		colorStart: uint8(top),
		colorEnd:   uint8(end - 1),
		airStart:   0,
	}
	if err := binary.Write(w, binary.LittleEndian, s); err != nil {
		return err
	}

	color := m.colors[y*m.width+x]
	for z := top; z < end; z++ {
		if err := binary.Write(w, binary.LittleEndian, shade(color, z-top)|0x7F000000); err != nil {
			return err
		}
	}
	return nil
}

func (m *Map) WriteCompressed(w io.Writer) error {
	data, err := m.Write()
	if err != nil {
		return err
	}

	zw := zlib.NewWriter(w)
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// Read parses uncompressed column data. Only the surface of each column is
// kept: overhangs and caves collapse into solid ground.
func Read(data []byte, width, height, depth int) (*Map, error) {
	m := &Map{
		width:  width,
		height: height,
		depth:  depth,
		top:    make([]int, width*height),
		colors: make([]uint32, width*height),
	}

	offset := 0
	for i := range m.top {
		first := true
		for {
			if offset+4 > len(data) {
				return nil, fmt.Errorf("unexpected end of data")
			}

			s := span{
				length:     data[offset],
				colorStart: data[offset+1],
				colorEnd:   data[offset+2],
				airStart:   data[offset+3],
			}

			length := s.dataLength()
			if offset+length > len(data) {
				return nil, fmt.Errorf("span exceeds data length")
			}

			if first {
				m.top[i] = min(int(s.colorStart), depth-1)
				m.colors[i] = defaultColor
				if s.colorEnd >= s.colorStart && length >= 8 {
					m.colors[i] = binary.LittleEndian.Uint32(data[offset+4:]) & 0xFFFFFF
				}
				first = false
			}

			offset += length
			if s.length == 0 {
				break
			}
		}
	}

	return m, nil
}

// ReadCompressed reads zlib compressed column data.
func ReadCompressed(r io.Reader, width, height, depth int) (*Map, error) {
	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open vxl stream: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress vxl: %w", err)
	}
	return Read(data, width, height, depth)
}

// Size guesses the side and depth of a square map from its column data.
func Size(data []byte) (size, depth int, err error) {
	offset := 0
	columns := 0
	maxDepth := 0

	for offset+4 <= len(data) {
		s := span{
			length:     data[offset],
			colorStart: data[offset+1],
			colorEnd:   data[offset+2],
			airStart:   data[offset+3],
		}

		if int(s.colorEnd)+1 > maxDepth {
			maxDepth = int(s.colorEnd) + 1
		}

		if s.length == 0 {
			columns++
		}

		offset += s.dataLength()
	}

	if columns == 0 {
		return 0, 0, fmt.Errorf("no columns in vxl data")
	}

	depth = 1 << int(math.Ceil(math.Log2(float64(max(maxDepth, 2)))))
	size = int(math.Sqrt(float64(columns)))
	return size, depth, nil
}
