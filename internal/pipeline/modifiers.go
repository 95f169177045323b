package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/siohaza/mapmaker/internal/fetch"
	"github.com/siohaza/mapmaker/pkg/config"
	"github.com/siohaza/mapmaker/pkg/erosion"
	"github.com/siohaza/mapmaker/pkg/grid"
	"github.com/siohaza/mapmaker/pkg/lua"
	"github.com/siohaza/mapmaker/pkg/terrain"
)

type modifier func(h *grid.HeightMap) (*grid.HeightMap, error)

// shape lifts an infallible operator into a modifier.
func shape(apply func(*grid.HeightMap) *grid.HeightMap) modifier {
	return func(h *grid.HeightMap) (*grid.HeightMap, error) {
		return apply(h), nil
	}
}

// modify applies stages in order, normalizing after each one.
func (r *run) modify(h *grid.HeightMap, stages []config.Stage, depth int) (*grid.HeightMap, error) {
	for _, s := range stages {
		err := r.stage("modifier", s.Name, depth, func() error {
			m, err := r.modifier(s, mapSize(h), depth)
			if err != nil {
				return err
			}
			out, err := m(h)
			if err != nil {
				return err
			}
			h = terrain.Normalize(out)
			return r.output(h, s.Output)
		})
		if err != nil {
			return nil, err
		}
	}
	return h, nil
}

// modifier builds a stage. Talus parameters are given for a map of size 1 and
// divided by size; islandize and gaussize lengths are fractions of size.
func (r *run) modifier(s config.Stage, size, depth int) (modifier, error) {
	p := s.Parameters

	switch s.Name {
	case "fast-erosion", "thermal-erosion":
		iterations, err := p.Int("iterations")
		if err != nil {
			return nil, err
		}
		talus, err := p.Float("talus")
		if err != nil {
			return nil, err
		}
		fraction, err := p.Float("fraction")
		if err != nil {
			return nil, err
		}

		var e erosion.Eroder
		if s.Name == "fast-erosion" {
			e = erosion.Fast{Iterations: iterations, Talus: talus / float64(size), Fraction: fraction}
		} else {
			e = erosion.Thermal{Iterations: iterations, Talus: talus / float64(size), Fraction: fraction}
		}
		return shape(e.Apply), nil

	case "hydraulic-erosion":
		var hy erosion.Hydraulic
		var err error
		if hy.Iterations, err = p.Int("iterations"); err != nil {
			return nil, err
		}
		if hy.Rain, err = p.Float("rain_amount"); err != nil {
			return nil, err
		}
		if hy.Solubility, err = p.Float("solubility"); err != nil {
			return nil, err
		}
		if hy.Evaporation, err = p.Float("evaporation"); err != nil {
			return nil, err
		}
		if hy.Capacity, err = p.Float("capacity"); err != nil {
			return nil, err
		}
		return shape(hy.Apply), nil

	case "islandize":
		border, err := p.Float("border")
		if err != nil {
			return nil, err
		}
		return shape(terrain.Islandize{Border: border * float64(size)}.Apply), nil

	case "gaussize":
		spread, err := p.Float("spread")
		if err != nil {
			return nil, err
		}
		return shape(terrain.Gaussize{Spread: spread * float64(size)}.Apply), nil

	case "flatten":
		factor, err := p.Float("factor")
		if err != nil {
			return nil, err
		}
		return shape(terrain.Flatten{Factor: factor}.Apply), nil

	case "smooth":
		iterations, err := p.Int("iterations")
		if err != nil {
			return nil, err
		}
		return shape(terrain.Smooth{Iterations: iterations}.Apply), nil

	case "sea-level":
		level, err := p.Float("level")
		if err != nil {
			return nil, err
		}
		return shape(terrain.SeaLevel{Level: level}.Apply), nil

	case "script":
		src, err := r.scriptSource(p)
		if err != nil {
			return nil, err
		}
		script, err := lua.NewScript(src)
		if err != nil {
			return nil, err
		}
		r.logger.Debug("loaded script", "name", script.Name, "description", script.Description)
		return script.Apply, nil

	case "intercept":
		return r.intercept(p, depth)
	}
	return nil, fmt.Errorf("%w: unknown modifier %q", config.ErrBadConfig, s.Name)
}

// intercept runs a nested modifier list and finalizer on a copy of its input
// and hands the input on unchanged.
func (r *run) intercept(p config.Parameters, depth int) (modifier, error) {
	stages, err := p.Stages("modifiers")
	if err != nil {
		return nil, err
	}
	finalizer, err := p.Stage("finalizer")
	if err != nil {
		return nil, err
	}

	return func(h *grid.HeightMap) (*grid.HeightMap, error) {
		branch, err := r.modify(h.Clone(), stages, depth+1)
		if err != nil {
			return nil, err
		}
		if err := r.finalize(branch, finalizer, depth+1); err != nil {
			return nil, err
		}
		return h, nil
	}, nil
}

// scriptSource resolves the file of a script stage, downloading it when it
// is not a local path.
func (r *run) scriptSource(p config.Parameters) (lua.Source, error) {
	code, err := p.StringOr("source", "")
	if err != nil {
		return lua.Source{}, err
	}
	if code != "" {
		return lua.Source{Code: code}, nil
	}

	file, err := p.StringOr("file", "")
	if err != nil {
		return lua.Source{}, err
	}
	if r.opts.BaseDir != "" && !filepath.IsAbs(file) {
		if local := filepath.Join(r.opts.BaseDir, file); fetch.IsLocal(local) {
			return lua.Source{File: local}, nil
		}
	}

	dir := r.opts.CacheDir
	if dir == "" {
		if r.scratch == "" {
			if r.scratch, err = os.MkdirTemp("", "mapmaker-scripts-"); err != nil {
				return lua.Source{}, err
			}
		}
		dir = r.scratch
	}

	path, err := fetch.File(r.ctx, file, dir)
	if err != nil {
		return lua.Source{}, err
	}
	return lua.Source{File: path}, nil
}
