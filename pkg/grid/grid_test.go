package grid

import (
	"errors"
	"slices"
	"sync/atomic"
	"testing"
)

func TestNewLikeKeepsDimensions(t *testing.T) {
	h := NewHeightMap(7, 3)
	m := NewLike[bool](h)

	if m.Width() != 7 || m.Height() != 3 {
		t.Fatalf("unexpected size %dx%d", m.Width(), m.Height())
	}
	for _, v := range m.Cells() {
		if v {
			t.Fatalf("NewLike must zero-initialize cells")
		}
	}
}

func TestCheckedAccessPanics(t *testing.T) {
	g := NewHeightMap(4, 4)

	tests := []struct {
		name string
		x, y int
	}{
		{"negative x", -1, 0},
		{"negative y", 0, -1},
		{"x past width", 4, 0},
		{"y past height", 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if r == nil {
					t.Fatalf("At(%d, %d) did not panic", tt.x, tt.y)
				}
				if _, ok := r.(OutOfRangeError); !ok {
					t.Fatalf("unexpected panic value %#v", r)
				}
			}()
			g.At(tt.x, tt.y)
		})
	}
}

func TestSetAndAtRoundTrip(t *testing.T) {
	g := NewHeightMap(3, 2)
	g.Set(2, 1, 0.75)

	if got := g.At(2, 1); got != 0.75 {
		t.Fatalf("At(2, 1) = %f", got)
	}
	if got := g.Cells()[g.Index(2, 1)]; got != 0.75 {
		t.Fatalf("row-major index mismatch: %f", got)
	}
	x, y := g.Position(g.Index(2, 1))
	if x != 2 || y != 1 {
		t.Fatalf("Position returned (%d, %d)", x, y)
	}
}

func TestVisitOmitsOutsideNeighbours(t *testing.T) {
	g := NewBinaryMap(3, 3)

	count := func(visit func(int, int, func(int, int)), x, y int) int {
		n := 0
		visit(x, y, func(int, int) { n++ })
		return n
	}

	tests := []struct {
		x, y  int
		four  int
		eight int
	}{
		{0, 0, 2, 3},
		{1, 0, 3, 5},
		{1, 1, 4, 8},
		{2, 2, 2, 3},
	}

	for _, tt := range tests {
		if got := count(g.Visit4, tt.x, tt.y); got != tt.four {
			t.Fatalf("Visit4(%d, %d) visited %d, want %d", tt.x, tt.y, got, tt.four)
		}
		if got := count(g.Visit8, tt.x, tt.y); got != tt.eight {
			t.Fatalf("Visit8(%d, %d) visited %d, want %d", tt.x, tt.y, got, tt.eight)
		}
	}
}

func TestSubmap(t *testing.T) {
	g, err := FromRows([][]int{
		{0, 1, 2, 3},
		{4, 5, 6, 7},
		{8, 9, 10, 11},
	})
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}

	sub, err := g.Submap(1, 1, 2, 2)
	if err != nil {
		t.Fatalf("Submap failed: %v", err)
	}
	if !slices.Equal(sub.Cells(), []int{5, 6, 9, 10}) {
		t.Fatalf("unexpected submap cells %v", sub.Cells())
	}

	truncated, err := g.Submap(3, 2, 5, 5)
	if err != nil {
		t.Fatalf("Submap failed: %v", err)
	}
	if truncated.Width() != 1 || truncated.Height() != 1 || truncated.At(0, 0) != 11 {
		t.Fatalf("unexpected truncated submap %v %v", truncated, truncated.Cells())
	}

	if _, err := g.Submap(5, 0, 1, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected dimension error, got %v", err)
	}
}

func TestFromRowsRejectsRagged(t *testing.T) {
	_, err := FromRows([][]bool{{true, false}, {true}})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := NewFilled(2, 2, 1.0)
	c := g.Clone()
	c.Set(0, 0, 5)

	if g.At(0, 0) != 1.0 {
		t.Fatalf("Clone shares storage with its source")
	}
	if Equal(g, c) {
		t.Fatalf("Equal should report differing grids")
	}
}

func TestParallelRowsCoversEveryRowOnce(t *testing.T) {
	for _, height := range []int{0, 1, 15, 16, 100, 1000} {
		hits := make([]int32, height)
		ParallelRows(height, func(y0, y1 int) {
			for y := y0; y < y1; y++ {
				atomic.AddInt32(&hits[y], 1)
			}
		})
		for y, n := range hits {
			if n != 1 {
				t.Fatalf("height %d: row %d visited %d times", height, y, n)
			}
		}
	}
}
