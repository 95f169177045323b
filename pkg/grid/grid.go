package grid

import (
	"errors"
	"fmt"
)

var ErrDimensionMismatch = errors.New("grid dimensions do not match")

// OutOfRangeError is the panic value of the checked accessors.
type OutOfRangeError struct {
	X, Y          int
	Width, Height int
}

func (e OutOfRangeError) Error() string {
	return fmt.Sprintf("grid: position (%d, %d) outside %dx%d", e.X, e.Y, e.Width, e.Height)
}

// Grid is a fixed-size rectangle of cells stored in row-major order.
type Grid[T any] struct {
	width  int
	height int
	cells  []T
}

type HeightMap = Grid[float64]

type BinaryMap = Grid[bool]

func New[T any](width, height int) *Grid[T] {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("grid: negative size %dx%d", width, height))
	}
	return &Grid[T]{
		width:  width,
		height: height,
		cells:  make([]T, width*height),
	}
}

func NewFilled[T any](width, height int, value T) *Grid[T] {
	g := New[T](width, height)
	g.Fill(value)
	return g
}

// NewLike allocates a zeroed grid with the dimensions of other, whatever its element type.
func NewLike[T, U any](other *Grid[U]) *Grid[T] {
	return New[T](other.width, other.height)
}

func NewHeightMap(width, height int) *HeightMap {
	return New[float64](width, height)
}

func NewBinaryMap(width, height int) *BinaryMap {
	return New[bool](width, height)
}

// FromRows builds a grid from rows indexed [y][x]. All rows must have the same length.
func FromRows[T any](rows [][]T) (*Grid[T], error) {
	if len(rows) == 0 {
		return New[T](0, 0), nil
	}
	width := len(rows[0])
	g := New[T](width, len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", y, len(row), width, ErrDimensionMismatch)
		}
		copy(g.cells[y*width:(y+1)*width], row)
	}
	return g, nil
}

func SameSize[T, U any](a *Grid[T], b *Grid[U]) bool {
	return a.width == b.width && a.height == b.height
}

// CheckSameSize returns ErrDimensionMismatch wrapped with both sizes.
func CheckSameSize[T, U any](a *Grid[T], b *Grid[U]) error {
	if !SameSize(a, b) {
		return fmt.Errorf("%dx%d vs %dx%d: %w", a.width, a.height, b.width, b.height, ErrDimensionMismatch)
	}
	return nil
}

func (g *Grid[T]) Width() int  { return g.width }
func (g *Grid[T]) Height() int { return g.height }
func (g *Grid[T]) Len() int    { return len(g.cells) }

// Cells exposes the backing slice, row-major.
func (g *Grid[T]) Cells() []T { return g.cells }

func (g *Grid[T]) Index(x, y int) int { return y*g.width + x }

func (g *Grid[T]) Position(i int) (x, y int) {
	return i % g.width, i / g.width
}

func (g *Grid[T]) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.width && y < g.height
}

// At is the bounds-checked read. It panics with OutOfRangeError.
func (g *Grid[T]) At(x, y int) T {
	g.check(x, y)
	return g.cells[y*g.width+x]
}

// Set is the bounds-checked write. It panics with OutOfRangeError.
func (g *Grid[T]) Set(x, y int, value T) {
	g.check(x, y)
	g.cells[y*g.width+x] = value
}

// Get reads without checking x against the width; hot loops only.
func (g *Grid[T]) Get(x, y int) T {
	return g.cells[y*g.width+x]
}

// Put writes without checking x against the width; hot loops only.
func (g *Grid[T]) Put(x, y int, value T) {
	g.cells[y*g.width+x] = value
}

func (g *Grid[T]) check(x, y int) {
	if !g.Contains(x, y) {
		panic(OutOfRangeError{X: x, Y: y, Width: g.width, Height: g.height})
	}
}

func (g *Grid[T]) Fill(value T) {
	for i := range g.cells {
		g.cells[i] = value
	}
}

func (g *Grid[T]) Clone() *Grid[T] {
	c := New[T](g.width, g.height)
	copy(c.cells, g.cells)
	return c
}

// Submap copies the w x h rectangle whose top-left corner is (x, y).
// The rectangle is truncated to the grid, as long as its origin lies inside.
func (g *Grid[T]) Submap(x, y, w, h int) (*Grid[T], error) {
	if x < 0 || y < 0 || w < 0 || h < 0 || x > g.width || y > g.height {
		return nil, fmt.Errorf("submap %dx%d at (%d, %d) of %dx%d: %w", w, h, x, y, g.width, g.height, ErrDimensionMismatch)
	}
	if x+w > g.width {
		w = g.width - x
	}
	if y+h > g.height {
		h = g.height - y
	}

	sub := New[T](w, h)
	for j := 0; j < h; j++ {
		src := (y+j)*g.width + x
		copy(sub.cells[j*w:(j+1)*w], g.cells[src:src+w])
	}
	return sub, nil
}

// Map applies fn to every cell into a fresh grid of the same dimensions.
func Map[T, U any](g *Grid[T], fn func(T) U) *Grid[U] {
	out := NewLike[U](g)
	for i, v := range g.cells {
		out.cells[i] = fn(v)
	}
	return out
}

func Equal[T comparable](a, b *Grid[T]) bool {
	if !SameSize(a, b) {
		return false
	}
	for i := range a.cells {
		if a.cells[i] != b.cells[i] {
			return false
		}
	}
	return true
}

func (g *Grid[T]) String() string {
	return fmt.Sprintf("grid %dx%d", g.width, g.height)
}
