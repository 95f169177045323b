// Package pipeline turns a configuration document into a heightmap: it builds
// the named generator, modifiers and finalizer, runs them in order, and
// writes the outputs each stage asks for.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/siohaza/mapmaker/internal/report"
	"github.com/siohaza/mapmaker/pkg/analysis"
	"github.com/siohaza/mapmaker/pkg/config"
	"github.com/siohaza/mapmaker/pkg/grid"
	"github.com/siohaza/mapmaker/pkg/terrain"
)

type Options struct {
	// OutputDir receives stage outputs and playability masks.
	OutputDir string
	// BaseDir resolves relative script paths, usually the document's directory.
	BaseDir string
	// CacheDir receives remote scripts. Empty means a temporary directory.
	CacheDir string
}

type Pipeline struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	return &Pipeline{opts: opts, logger: logger}
}

type Result struct {
	Seed   uint64
	Map    *grid.HeightMap
	Stages []report.Stage

	// Erosion is set by an erosion-score finalizer, Scores by playability.
	// A finalizer nested in an intercept overwrites earlier results.
	Erosion *float64
	Scores  *analysis.Scores
}

func (r *Result) Summary(source string, withSeed bool) report.Summary {
	s := report.Summary{
		Source:  source,
		Width:   r.Map.Width(),
		Height:  r.Map.Height(),
		Stages:  r.Stages,
		Erosion: r.Erosion,
		Scores:  r.Scores,
	}
	if withSeed {
		seed := r.Seed
		s.Seed = &seed
	}
	return s
}

// run carries the state of one document through its stages.
type run struct {
	*Pipeline
	ctx    context.Context
	rng    *rand.Rand
	result *Result
	// scratch holds downloaded scripts until the run ends.
	scratch string
}

func (p *Pipeline) newRun(ctx context.Context, seed uint64) *run {
	return &run{
		Pipeline: p,
		ctx:      ctx,
		rng:      terrain.NewRand(seed),
		result:   &Result{Seed: seed},
	}
}

func (r *run) close() {
	if r.scratch != "" {
		os.RemoveAll(r.scratch)
	}
}

// Run validates doc and executes it. A document without a seed gets a random
// one, which is logged and returned in the result.
func (p *Pipeline) Run(ctx context.Context, doc *config.Document) (*Result, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	var seed uint64
	if doc.Seed != nil {
		seed = *doc.Seed
	} else {
		seed = rand.Uint64()
		p.logger.Info("using random seed", "seed", seed)
	}

	r := p.newRun(ctx, seed)
	defer r.close()

	h, err := r.generate(doc.Generator)
	if err != nil {
		return nil, err
	}
	if h, err = r.modify(h, doc.Modifiers, 0); err != nil {
		return nil, err
	}
	if err := r.finalize(h, doc.Finalizer, 0); err != nil {
		return nil, err
	}

	r.result.Map = h
	return r.result, nil
}

// Analyze runs modifiers and a finalizer over an existing heightmap, which is
// normalized first.
func (p *Pipeline) Analyze(ctx context.Context, h *grid.HeightMap, modifiers []config.Stage, finalizer *config.Stage) (*Result, error) {
	if err := config.ValidateStages(modifiers, finalizer); err != nil {
		return nil, err
	}

	r := p.newRun(ctx, 0)
	defer r.close()

	h = terrain.Normalize(h)
	h, err := r.modify(h, modifiers, 0)
	if err != nil {
		return nil, err
	}
	if err := r.finalize(h, finalizer, 0); err != nil {
		return nil, err
	}

	r.result.Map = h
	return r.result, nil
}

// stage times fn and records it. Cancellation is checked between stages only.
func (r *run) stage(kind, name string, depth int, fn func() error) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}

	// reserve the slot first so nested stages are listed after their parent
	slot := len(r.result.Stages)
	r.result.Stages = append(r.result.Stages, report.Stage{Name: name, Depth: depth})

	start := time.Now()
	r.logger.Debug("stage started", "stage", kind, "name", name, "depth", depth)

	if err := fn(); err != nil {
		return fmt.Errorf("%s %s: %w", kind, name, err)
	}

	elapsed := time.Since(start)
	r.result.Stages[slot].Duration = elapsed
	r.logger.Info("stage finished", "stage", kind, "name", name, "depth", depth, "duration", elapsed)
	return nil
}

// mapSize is the reference length that size-relative parameters scale with.
func mapSize(h *grid.HeightMap) int {
	lo := min(h.Width(), h.Height())
	hi := max(h.Width(), h.Height())
	return lo + (hi-lo)/2
}
