package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/siohaza/mapmaker/pkg/config"
	"github.com/siohaza/mapmaker/pkg/grid"
	"github.com/siohaza/mapmaker/pkg/terrain"
)

func newTestPipeline(t *testing.T) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(Options{OutputDir: dir, CacheDir: filepath.Join(dir, "cache")}, logger), dir
}

func decode(t *testing.T, src string) *config.Document {
	t.Helper()
	doc, err := config.Decode([]byte(src), config.FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

const island = `
seed: 42
generator:
  name: diamond-square
  size: {width: 33, height: 33}
  parameters: {values: [0, 0, 0, 0]}
  output: {filename: raw.pgm}
modifiers:
  - name: islandize
    parameters: {border: 0.1}
  - name: thermal-erosion
    parameters: {iterations: 5, talus: 4, fraction: 0.5}
  - name: hydraulic-erosion
    parameters: {iterations: 5, rain_amount: 0.01, solubility: 0.01, evaporation: 0.5, capacity: 0.01}
    output: {filename: eroded.png, type: png}
finalizer:
  name: playability
  parameters:
    sea_level: 0.3
    unit_size: 1
    building_size: 2
    unit_talus: 8
    building_talus: 4
    output_intermediates: true
`

func TestRunDeterministic(t *testing.T) {
	p, _ := newTestPipeline(t)

	a, err := p.Run(context.Background(), decode(t, island))
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Run(context.Background(), decode(t, island))
	if err != nil {
		t.Fatal(err)
	}

	if a.Seed != 42 {
		t.Errorf("Seed = %d, want 42", a.Seed)
	}
	if !grid.Equal(a.Map, b.Map) {
		t.Error("same seed produced different maps")
	}
	if *a.Scores != *b.Scores {
		t.Errorf("scores differ: %+v vs %+v", *a.Scores, *b.Scores)
	}
}

func TestRunOutputs(t *testing.T) {
	p, dir := newTestPipeline(t)

	res, err := p.Run(context.Background(), decode(t, island))
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{
		"raw.pgm", "eroded.png",
		"unit1.pbm", "unit2.pbm", "unit3.pbm",
		"building1.pbm", "building2.pbm", "building3.pbm",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}

	if res.Scores == nil {
		t.Fatal("playability did not record scores")
	}
	for _, v := range []float64{res.Scores.Erosion, res.Scores.Unit, res.Scores.Building} {
		if math.IsNaN(v) || v < 0 {
			t.Errorf("invalid score in %+v", *res.Scores)
		}
	}

	lo, hi := 1.0, 0.0
	for _, v := range res.Map.Cells() {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo != 0 || hi != 1 {
		t.Errorf("final map spans [%v, %v], want [0, 1]", lo, hi)
	}

	wantStages := []string{"diamond-square", "islandize", "thermal-erosion", "hydraulic-erosion", "playability"}
	if len(res.Stages) != len(wantStages) {
		t.Fatalf("got %d stages, want %d", len(res.Stages), len(wantStages))
	}
	for i, name := range wantStages {
		if res.Stages[i].Name != name {
			t.Errorf("stage %d = %s, want %s", i, res.Stages[i].Name, name)
		}
	}
}

func TestInterceptLeavesMapUnchanged(t *testing.T) {
	const base = `
seed: 7
generator:
  name: diamond-square
  size: {width: 17, height: 17}
  parameters: {values: 0.5}
`
	const intercepted = base + `
modifiers:
  - name: intercept
    parameters:
      modifiers:
        - name: smooth
          parameters: {iterations: 2}
        - name: intercept
          parameters:
            modifiers:
              - name: flatten
                parameters: {factor: 2}
      finalizer:
        name: erosion-score
`
	p, _ := newTestPipeline(t)

	plain, err := p.Run(context.Background(), decode(t, base))
	if err != nil {
		t.Fatal(err)
	}
	res, err := p.Run(context.Background(), decode(t, intercepted))
	if err != nil {
		t.Fatal(err)
	}

	if !grid.Equal(plain.Map, res.Map) {
		t.Error("intercept changed the map")
	}
	if res.Erosion == nil {
		t.Error("nested finalizer did not run")
	}

	want := []struct {
		name  string
		depth int
	}{
		{"diamond-square", 0},
		{"intercept", 0},
		{"smooth", 1},
		{"intercept", 1},
		{"flatten", 2},
		{"erosion-score", 1},
	}
	if len(res.Stages) != len(want) {
		t.Fatalf("stages = %+v", res.Stages)
	}
	for i, w := range want {
		if res.Stages[i].Name != w.name || res.Stages[i].Depth != w.depth {
			t.Errorf("stage %d = %s@%d, want %s@%d", i, res.Stages[i].Name, res.Stages[i].Depth, w.name, w.depth)
		}
	}
}

func TestRunRandomSeed(t *testing.T) {
	p, _ := newTestPipeline(t)
	doc := decode(t, "generator:\n  name: hills\n  size: {width: 16, height: 8}\n  parameters: {count: 4}\n")

	res, err := p.Run(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}
	if res.Map.Width() != 16 || res.Map.Height() != 8 {
		t.Errorf("size = %dx%d, want 16x8", res.Map.Width(), res.Map.Height())
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	p, dir := newTestPipeline(t)
	doc := decode(t, `
generator:
  name: diamond-square
  size: {width: 9, height: 9}
  output: {filename: never.pgm}
modifiers:
  - name: fast-erosion
    parameters: {iterations: 1, talus: 1, fraction: 2}
`)

	if _, err := p.Run(context.Background(), doc); !errors.Is(err, config.ErrBadConfig) {
		t.Fatalf("err = %v, want ErrBadConfig", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "never.pgm")); !os.IsNotExist(err) {
		t.Error("output written before validation failed")
	}
}

func TestRunScripts(t *testing.T) {
	p, _ := newTestPipeline(t)
	doc := decode(t, `
seed: 1
generator:
  name: fractal
  size: {width: 5, height: 3}
  parameters:
    noise: script
    noise_parameters:
      source: "function noise(x, y) return y end"
    octaves: 1
    lacunarity: 2
    persistence: 0.5
modifiers:
  - name: script
    parameters:
      source: "function modify(x, y, h, width, height) return x + get_height(x, y) end"
`)

	res, err := p.Run(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}

	// the generator yields y/2 per row, the modifier adds x; normalization
	// divides by the final span of 5
	for y := 0; y < 3; y++ {
		for x := 0; x < 5; x++ {
			want := (float64(x) + float64(y)/2) / 5
			if got := res.Map.At(x, y); math.Abs(got-want) > 1e-9 {
				t.Errorf("(%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestRunScriptFile(t *testing.T) {
	p, _ := newTestPipeline(t)

	dir := t.TempDir()
	script := filepath.Join(dir, "invert.lua")
	if err := os.WriteFile(script, []byte("name = \"invert\"\nfunction modify(x, y, h) return 1 - h end\n"), 0644); err != nil {
		t.Fatal(err)
	}

	p.opts.BaseDir = dir
	doc := decode(t, `
seed: 3
generator:
  name: hills
  size: {width: 8, height: 8}
  parameters: {count: 2, radius_min: 0.3, radius_max: 0.5}
modifiers:
  - name: script
    parameters: {file: invert.lua}
`)
	res, err := p.Run(context.Background(), doc)
	if err != nil {
		t.Fatal(err)
	}

	plain, err := p.Run(context.Background(), decode(t, "seed: 3\ngenerator:\n  name: hills\n  size: {width: 8, height: 8}\n  parameters: {count: 2, radius_min: 0.3, radius_max: 0.5}\n"))
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range plain.Map.Cells() {
		if got := res.Map.Cells()[i]; math.Abs(got-(1-v)) > 1e-9 {
			t.Fatalf("cell %d = %v, want %v", i, got, 1-v)
		}
	}
}

func TestRunScriptFailure(t *testing.T) {
	p, _ := newTestPipeline(t)
	doc := decode(t, `
generator:
  name: fractal
  size: {width: 4, height: 4}
  parameters:
    noise: script
    noise_parameters: {source: "function noise(x, y) error('boom') end"}
    octaves: 1
    lacunarity: 2
    persistence: 0.5
`)
	if _, err := p.Run(context.Background(), doc); err == nil {
		t.Fatal("expected script error")
	}
}

func TestRunCanceled(t *testing.T) {
	p, _ := newTestPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Run(ctx, decode(t, island)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestAnalyzeUnderwater(t *testing.T) {
	p, _ := newTestPipeline(t)
	finalizer := &config.Stage{
		Name: "playability",
		Parameters: config.Parameters{
			"sea_level":      0.5,
			"unit_size":      1,
			"building_size":  2,
			"unit_talus":     1.0,
			"building_talus": 1.0,
		},
	}

	res, err := p.Analyze(context.Background(), grid.NewHeightMap(6, 6), nil, finalizer)
	if err != nil {
		t.Fatal(err)
	}
	if res.Scores == nil || res.Scores.Unit != 0 || res.Scores.Building != 0 {
		t.Errorf("scores = %+v, want zero unit and building", res.Scores)
	}
}

func TestAnalyzeSlope(t *testing.T) {
	p, _ := newTestPipeline(t)
	h, _ := grid.FromRows([][]float64{
		{0, 1, 2, 3},
		{0, 1, 2, 3},
		{0, 1, 2, 3},
		{0, 1, 2, 3},
	})

	res, err := p.Analyze(context.Background(), h, nil, &config.Stage{Name: "erosion-score"})
	if err != nil {
		t.Fatal(err)
	}
	// a uniform ramp has the same slope everywhere
	if res.Erosion == nil || math.Abs(*res.Erosion) > 1e-9 {
		t.Errorf("erosion score = %v, want 0", res.Erosion)
	}
	if res.Map.At(3, 0) != 1 {
		t.Errorf("input was not normalized: %v", res.Map.At(3, 0))
	}
}

func TestMapSize(t *testing.T) {
	tests := []struct {
		w, h, want int
	}{
		{512, 512, 512},
		{256, 512, 384},
		{513, 256, 384},
	}
	for _, tt := range tests {
		if got := mapSize(grid.NewHeightMap(tt.w, tt.h)); got != tt.want {
			t.Errorf("mapSize(%d, %d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestDiamondSquareCornerValues(t *testing.T) {
	p, _ := newTestPipeline(t)
	r := p.newRun(context.Background(), 1)

	tests := []struct {
		name   string
		values any
		want   terrain.DiamondSquare
	}{
		{"scalar", 0.5, terrain.UniformDiamondSquare(0.5)},
		{"integer scalar", 1, terrain.UniformDiamondSquare(1)},
		{"list", []any{0.1, 0.2, 0.3, 0.4}, terrain.NewDiamondSquare([4]float64{0.1, 0.2, 0.3, 0.4})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, _, err := r.generator("diamond-square", config.Parameters{"values": tt.values})
			if err != nil {
				t.Fatal(err)
			}
			if gen != tt.want {
				t.Errorf("generator = %+v, want %+v", gen, tt.want)
			}
		})
	}

	gen, _, err := r.generator("diamond-square", config.Parameters{})
	if err != nil {
		t.Fatal(err)
	}
	if gen != terrain.UniformDiamondSquare(0) {
		t.Errorf("generator without values = %+v, want zero corners", gen)
	}

	if _, _, err := r.generator("diamond-square", config.Parameters{"values": "high"}); err == nil {
		t.Error("expected an error for non-numeric values")
	}
}
