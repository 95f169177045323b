package lua

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/siohaza/mapmaker/pkg/grid"
	"github.com/siohaza/mapmaker/pkg/terrain"
)

func TestScriptModify(t *testing.T) {
	s, err := NewScript(Source{Code: `
name = "double"
function modify(x, y, h, width, height)
  return clamp(h * 2, 0, 1)
end
`})
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "double" {
		t.Errorf("Name = %q, want double", s.Name)
	}

	h, _ := grid.FromRows([][]float64{{0.1, 0.4}, {0.6, 0.9}})
	out, err := s.Apply(h)
	if err != nil {
		t.Fatal(err)
	}

	want := []float64{0.2, 0.8, 1, 1}
	for i, v := range out.Cells() {
		if v != want[i] {
			t.Errorf("cell %d = %v, want %v", i, v, want[i])
		}
	}
}

func TestScriptReadsNeighbours(t *testing.T) {
	s, err := NewScript(Source{Code: `
function modify(x, y, h, width, height)
  if x + 1 < width then
    return get_height(x + 1, y)
  end
  return h
end
`})
	if err != nil {
		t.Fatal(err)
	}

	h, _ := grid.FromRows([][]float64{{1, 2, 3}})
	out, err := s.Apply(h)
	if err != nil {
		t.Fatal(err)
	}

	want := []float64{2, 3, 3}
	for i, v := range out.Cells() {
		if v != want[i] {
			t.Errorf("cell %d = %v, want %v", i, v, want[i])
		}
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr string
	}{
		{"no modify", "x = 1", "does not define modify"},
		{"syntax", "function modify(", "failed to load lua string"},
		{"sandbox", "function modify(x, y, h) return io.read() end", "modify"},
		{"out of range", "function modify(x, y, h) return get_height(-1, 0) end", "outside the map"},
		{"not a number", "function modify(x, y, h) return {} end", "did not return a number"},
	}

	h := grid.NewHeightMap(2, 2)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScript(Source{Code: tt.code})
			if err == nil {
				_, err = s.Apply(h)
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestScriptFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invert.lua")
	code := "function modify(x, y, h) return 1 - h end\n"
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := NewScript(Source{File: path})
	if err != nil {
		t.Fatal(err)
	}
	out, err := s.Apply(grid.NewFilled(2, 2, 0.25))
	if err != nil {
		t.Fatal(err)
	}
	if out.At(1, 1) != 0.75 {
		t.Errorf("At(1, 1) = %v, want 0.75", out.At(1, 1))
	}

	if _, err := NewScript(Source{File: filepath.Join(t.TempDir(), "missing.lua")}); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestNoise(t *testing.T) {
	n, err := NewNoise(Source{Code: `
function noise(x, y)
  return lerp(x, y, 0.5) + seed
end
`}, 3)
	if err != nil {
		t.Fatal(err)
	}

	if got := n.Noise(1, 2); got != 4.5 {
		t.Errorf("Noise(1, 2) = %v, want 4.5", got)
	}
	if n.Err() != nil {
		t.Errorf("Err = %v", n.Err())
	}
}

func TestNoiseKeepsFirstError(t *testing.T) {
	n, err := NewNoise(Source{Code: `function noise(x, y) error("boom") end`}, 0)
	if err != nil {
		t.Fatal(err)
	}

	if got := n.Noise(0, 0); got != 0 {
		t.Errorf("Noise = %v, want 0", got)
	}
	if n.Err() == nil || !strings.Contains(n.Err().Error(), "boom") {
		t.Errorf("Err = %v, want boom", n.Err())
	}
}

func TestNoiseSameSeedSameMap(t *testing.T) {
	const code = `
math.randomseed(seed)
function noise(x, y)
  return math.random()
end
`
	fractal := func(seed uint32) *grid.HeightMap {
		t.Helper()
		n, err := NewNoise(Source{Code: code}, seed)
		if err != nil {
			t.Fatal(err)
		}
		m := terrain.Fractal{Kernel: n, Octaves: 2, Lacunarity: 2, Persistence: 0.5}.Generate(nil, 64, 64)
		if n.Err() != nil {
			t.Fatal(n.Err())
		}
		return m
	}

	a, b := fractal(42), fractal(42)
	if !grid.Equal(a, b) {
		t.Errorf("same seed produced different maps: a[0]=%v b[0]=%v", a.At(0, 0), b.At(0, 0))
	}
	if grid.Equal(a, fractal(43)) {
		t.Error("different seeds produced the same map")
	}
}

func TestMathRandomSeededByNoise(t *testing.T) {
	const code = `
function noise(x, y)
  local v = math.random(3, 5)
  if v < 3 or v > 5 or v ~= math.floor(v) then error("out of range " .. v) end
  return v + math.random(2) * 10 + math.random()
end
`
	draw := func() []float64 {
		n, err := NewNoise(Source{Code: code}, 7)
		if err != nil {
			t.Fatal(err)
		}
		out := make([]float64, 16)
		for i := range out {
			out[i] = n.Noise(0, 0)
		}
		if n.Err() != nil {
			t.Fatal(n.Err())
		}
		return out
	}

	a, b := draw(), draw()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("draw %d = %v then %v", i, a[i], b[i])
		}
	}
}

func TestMathRandomEmptyInterval(t *testing.T) {
	n, err := NewNoise(Source{Code: `function noise(x, y) return math.random(5, 1) end`}, 0)
	if err != nil {
		t.Fatal(err)
	}
	n.Noise(0, 0)
	if n.Err() == nil || !strings.Contains(n.Err().Error(), "interval is empty") {
		t.Errorf("Err = %v, want interval is empty", n.Err())
	}
}
