package vxl

import (
	"bytes"
	"math"
	"testing"

	"github.com/siohaza/mapmaker/pkg/grid"
)

func TestFromHeightMapQuantizes(t *testing.T) {
	h, _ := grid.FromRows([][]float64{{0, 0.5, 1}})

	m, err := FromHeightMap(h, 64, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		x, want int
	}{
		{0, 63},
		{1, 31},
		{2, 0},
	}
	for _, tt := range tests {
		if got := m.FindTopBlock(tt.x, 0); got != tt.want {
			t.Errorf("FindTopBlock(%d, 0) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestFromHeightMapDepth(t *testing.T) {
	h := grid.NewHeightMap(2, 2)
	for _, depth := range []int{0, 1, 257} {
		if _, err := FromHeightMap(h, depth, nil); err == nil {
			t.Errorf("depth %d accepted", depth)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	h, _ := grid.FromRows([][]float64{
		{0.1, 0.5, 0.9, 0.2},
		{0.3, 1.0, 0.0, 0.7},
		{0.6, 0.4, 0.8, 0.5},
		{0.0, 0.2, 0.3, 1.0},
	})

	m, err := FromHeightMap(h, 64, func(x, y int) uint32 { return uint32(x<<16 | y) })
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := m.WriteCompressed(&buf); err != nil {
		t.Fatal(err)
	}

	back, err := ReadCompressed(&buf, 4, 4, 64)
	if err != nil {
		t.Fatal(err)
	}

	got := back.HeightMap()
	for i, v := range h.Cells() {
		if math.Abs(got.Cells()[i]-v) > 0.5/63+1e-12 {
			t.Errorf("cell %d = %v, want %v within one level", i, got.Cells()[i], v)
		}
	}
	if c := back.colors[back.width*1+2]; c != 2<<16|1 {
		t.Errorf("surface color = %#x, want %#x", c, 2<<16|1)
	}
}

func TestSize(t *testing.T) {
	m, err := FromHeightMap(grid.NewHeightMap(8, 8), 64, nil)
	if err != nil {
		t.Fatal(err)
	}
	data, err := m.Write()
	if err != nil {
		t.Fatal(err)
	}

	size, depth, err := Size(data)
	if err != nil {
		t.Fatal(err)
	}
	if size != 8 || depth != 64 {
		t.Errorf("Size = %d, %d, want 8, 64", size, depth)
	}
}

func TestReadTruncated(t *testing.T) {
	if _, err := Read([]byte{0, 1}, 1, 1, 64); err == nil {
		t.Error("expected an error for truncated data")
	}
}
