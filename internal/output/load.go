package output

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "golang.org/x/image/tiff"

	"github.com/siohaza/mapmaker/pkg/grid"
	"github.com/siohaza/mapmaker/pkg/vxl"
)

// LoadFile reads a heightmap from a PGM, PNG, TIFF or VXL file. Values are
// scaled to [0, 1] by the format's maximum, not normalized.
func LoadFile(path string) (*grid.HeightMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read heightmap: %w", err)
	}

	h, err := Load(bytes.NewReader(data), filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return h, nil
}

// Load decodes a heightmap; ext selects vxl, anything else is sniffed.
func Load(r io.Reader, ext string) (*grid.HeightMap, error) {
	if strings.EqualFold(ext, ".vxl") {
		return loadVXL(r)
	}

	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil {
		return nil, err
	}
	if magic[0] == 'P' && (magic[1] == '2' || magic[1] == '5') {
		return LoadPGM(br)
	}

	img, _, err := image.Decode(br)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// FromImage converts any image to heights using its 16-bit luminance.
func FromImage(img image.Image) *grid.HeightMap {
	b := img.Bounds()
	h := grid.NewHeightMap(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			h.Put(x-b.Min.X, y-b.Min.Y, float64(g.Y)/0xFFFF)
		}
	}
	return h
}

// LoadPGM reads ASCII (P2) and binary (P5) graymaps with 8 or 16-bit samples.
func LoadPGM(r io.Reader) (*grid.HeightMap, error) {
	br := bufio.NewReader(r)

	magic, err := pnmToken(br)
	if err != nil {
		return nil, err
	}
	if magic != "P2" && magic != "P5" {
		return nil, fmt.Errorf("not a graymap: %q", magic)
	}

	var header [3]int
	for i := range header {
		tok, err := pnmToken(br)
		if err != nil {
			return nil, fmt.Errorf("truncated header: %w", err)
		}
		if header[i], err = strconv.Atoi(tok); err != nil || header[i] <= 0 {
			return nil, fmt.Errorf("invalid header value %q", tok)
		}
	}
	width, height, maxval := header[0], header[1], header[2]
	if maxval > 0xFFFF {
		return nil, fmt.Errorf("invalid maxval %d", maxval)
	}

	h := grid.NewHeightMap(width, height)
	scale := float64(maxval)
	cells := h.Cells()

	if magic == "P2" {
		for i := range cells {
			tok, err := pnmToken(br)
			if err != nil {
				return nil, fmt.Errorf("truncated data: %w", err)
			}
			v, err := strconv.Atoi(tok)
			if err != nil {
				return nil, fmt.Errorf("invalid sample %q", tok)
			}
			cells[i] = float64(v) / scale
		}
		return h, nil
	}

	size := 1
	if maxval > 0xFF {
		size = 2
	}
	buf := make([]byte, len(cells)*size)
	if _, err := io.ReadFull(br, buf); err != nil {
		return nil, fmt.Errorf("truncated data: %w", err)
	}
	for i := range cells {
		if size == 1 {
			cells[i] = float64(buf[i]) / scale
		} else {
			cells[i] = float64(uint16(buf[2*i])<<8|uint16(buf[2*i+1])) / scale
		}
	}
	return h, nil
}

// pnmToken reads a whitespace separated token, skipping # comments. After the
// last header token exactly one whitespace byte is consumed.
func pnmToken(br *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		c, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}

		switch {
		case c == '#' && sb.Len() == 0:
			if _, err := br.ReadString('\n'); err != nil {
				return "", err
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if sb.Len() > 0 {
				return sb.String(), nil
			}
		default:
			sb.WriteByte(c)
		}
	}
}

func loadVXL(r io.Reader) (*grid.HeightMap, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	// written maps are zlib compressed, but raw column data is accepted too
	if zr, err := zlib.NewReader(bytes.NewReader(data)); err == nil {
		raw, err := io.ReadAll(zr)
		zr.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to decompress vxl: %w", err)
		}
		data = raw
	}

	size, depth, err := vxl.Size(data)
	if err != nil {
		return nil, err
	}
	m, err := vxl.Read(data, size, size, max(depth, vxl.DefaultDepth))
	if err != nil {
		return nil, err
	}
	return m.HeightMap(), nil
}
