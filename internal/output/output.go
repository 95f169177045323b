// Package output writes heightmaps and masks to image files and reads
// heightmaps back.
package output

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/tiff"

	"github.com/siohaza/mapmaker/pkg/grid"
	"github.com/siohaza/mapmaker/pkg/vxl"
)

type Kind int

const (
	KindGrayscale Kind = iota
	KindColored
	KindPNG
	KindTIFF
	KindVXL
)

func (k Kind) String() string {
	switch k {
	case KindGrayscale:
		return "grayscale"
	case KindColored:
		return "colored"
	case KindPNG:
		return "png"
	case KindTIFF:
		return "tiff"
	case KindVXL:
		return "vxl"
	default:
		return "unknown"
	}
}

// ParseKind maps an output type name to a Kind. An empty name is guessed from
// the file extension, falling back to grayscale.
func ParseKind(name, filename string) (Kind, error) {
	if name == "" {
		switch filepath.Ext(filename) {
		case ".png":
			return KindPNG, nil
		case ".tif", ".tiff":
			return KindTIFF, nil
		case ".ppm":
			return KindColored, nil
		case ".vxl":
			return KindVXL, nil
		}
		return KindGrayscale, nil
	}

	for k := KindGrayscale; k <= KindVXL; k++ {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown output type %q", name)
}

type Options struct {
	SeaLevel float64
	Shaded   bool
	// Depth is the number of vxl levels.
	Depth int
}

func DefaultOptions() Options {
	return Options{SeaLevel: 0.5, Depth: vxl.DefaultDepth}
}

// WriteFile encodes h into path, creating parent directories as needed.
func WriteFile(path string, kind Kind, h *grid.HeightMap, opts Options) error {
	return create(path, func(w io.Writer) error {
		return Write(w, kind, h, opts)
	})
}

func Write(w io.Writer, kind Kind, h *grid.HeightMap, opts Options) error {
	switch kind {
	case KindGrayscale:
		return WritePGM(w, h)
	case KindColored:
		img := Colorize(h, BasicRamp(), opts.SeaLevel)
		if opts.Shaded {
			Shade(img, h, opts.SeaLevel)
		}
		return WritePPM(w, img)
	case KindPNG:
		return png.Encode(w, Gray16(h))
	case KindTIFF:
		return tiff.Encode(w, Gray16(h), &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case KindVXL:
		ramp := BasicRamp()
		m, err := vxl.FromHeightMap(h, opts.Depth, func(x, y int) uint32 {
			c := ramp.At(seaOffset(h.Get(x, y), opts.SeaLevel))
			return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
		})
		if err != nil {
			return err
		}
		return m.WriteCompressed(w)
	default:
		return fmt.Errorf("unknown output kind %d", kind)
	}
}

// WriteMaskFile writes m as a binary PBM, set cells in white.
func WriteMaskFile(path string, m *grid.BinaryMap) error {
	return create(path, func(w io.Writer) error { return WritePBM(w, m) })
}

func create(path string, fn func(w io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(file)
	if err := fn(bw); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func level8(v float64) uint8 {
	return uint8(math.Round(min(max(v, 0), 1) * 0xFF))
}

func level16(v float64) uint16 {
	return uint16(math.Round(min(max(v, 0), 1) * 0xFFFF))
}

// Gray16 converts a normalized heightmap to a 16-bit image.
func Gray16(h *grid.HeightMap) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, h.Width(), h.Height()))
	for y := 0; y < h.Height(); y++ {
		for x := 0; x < h.Width(); x++ {
			img.SetGray16(x, y, color.Gray16{Y: level16(h.Get(x, y))})
		}
	}
	return img
}

// WritePGM writes an 8-bit binary graymap.
func WritePGM(w io.Writer, h *grid.HeightMap) error {
	if _, err := fmt.Fprintf(w, "P5\n%d %d\n255\n", h.Width(), h.Height()); err != nil {
		return err
	}

	row := make([]byte, h.Width())
	for y := 0; y < h.Height(); y++ {
		for x := range row {
			row[x] = level8(h.Get(x, y))
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WritePBM writes a packed bitmap; unset cells are black.
func WritePBM(w io.Writer, m *grid.BinaryMap) error {
	if _, err := fmt.Fprintf(w, "P4\n%d %d\n", m.Width(), m.Height()); err != nil {
		return err
	}

	row := make([]byte, (m.Width()+7)/8)
	for y := 0; y < m.Height(); y++ {
		clear(row)
		for x := 0; x < m.Width(); x++ {
			if !m.Get(x, y) {
				row[x/8] |= 0x80 >> (x % 8)
			}
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WritePPM writes a binary pixmap, dropping alpha.
func WritePPM(w io.Writer, img *image.RGBA) error {
	b := img.Bounds()
	if _, err := fmt.Fprintf(w, "P6\n%d %d\n255\n", b.Dx(), b.Dy()); err != nil {
		return err
	}

	row := make([]byte, 3*b.Dx())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			i := 3 * (x - b.Min.X)
			row[i], row[i+1], row[i+2] = c.R, c.G, c.B
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
