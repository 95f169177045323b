package pipeline

import (
	"fmt"

	"github.com/siohaza/mapmaker/pkg/classicgen"
	"github.com/siohaza/mapmaker/pkg/config"
	"github.com/siohaza/mapmaker/pkg/grid"
	"github.com/siohaza/mapmaker/pkg/lua"
	"github.com/siohaza/mapmaker/pkg/noise"
	"github.com/siohaza/mapmaker/pkg/terrain"
)

// failer is implemented by kernels that can fail while sampling.
type failer interface {
	Err() error
}

func (r *run) generate(g *config.Generator) (*grid.HeightMap, error) {
	var h *grid.HeightMap

	err := r.stage("generator", g.Name, 0, func() error {
		gen, kernel, err := r.generator(g.Name, g.Parameters)
		if err != nil {
			return err
		}

		h = gen.Generate(r.rng, g.Size.Width, g.Size.Height)
		if f, ok := kernel.(failer); ok && f.Err() != nil {
			return f.Err()
		}
		h = terrain.Normalize(h)

		r.logger.Debug("generated map", "width", h.Width(), "height", h.Height())
		return r.output(h, g.Output)
	})
	return h, err
}

// generator builds the named generator. The kernel is returned so that script
// failures can be reported after sampling.
func (r *run) generator(name string, p config.Parameters) (terrain.Generator, noise.Kernel, error) {
	switch name {
	case "diamond-square":
		if v, err := p.Float("values"); err == nil {
			return terrain.UniformDiamondSquare(v), nil, nil
		}
		corners, err := p.Corners("values")
		if err != nil {
			return nil, nil, err
		}
		return terrain.NewDiamondSquare(corners), nil, nil

	case "midpoint-displacement":
		corners, err := p.Corners("values")
		if err != nil {
			return nil, nil, err
		}
		return terrain.NewMidpointDisplacement(corners), nil, nil

	case "fractal":
		return r.fractal(p)

	case "hills":
		count, err := p.Int("count")
		if err != nil {
			return nil, nil, err
		}
		lo, err := p.FloatOr("radius_min", 0.05)
		if err != nil {
			return nil, nil, err
		}
		hi, err := p.FloatOr("radius_max", 0.15)
		if err != nil {
			return nil, nil, err
		}
		return terrain.Hills{Count: count, RadiusMin: lo, RadiusMax: hi}, nil, nil

	case "flat":
		return terrain.Flat{}, nil, nil

	case "classic":
		gen := classicgen.DefaultGenerator()
		var err error
		if gen.Octaves, err = p.IntOr("octaves", gen.Octaves); err != nil {
			return nil, nil, err
		}
		if gen.Persistence, err = p.FloatOr("persistence", gen.Persistence); err != nil {
			return nil, nil, err
		}
		return gen, nil, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown generator %q", config.ErrBadConfig, name)
}

func (r *run) fractal(p config.Parameters) (terrain.Generator, noise.Kernel, error) {
	name, err := p.StringOr("noise", "")
	if err != nil {
		return nil, nil, err
	}
	np, err := p.Table("noise_parameters")
	if err != nil {
		return nil, nil, err
	}
	kernel, err := r.kernel(name, np)
	if err != nil {
		return nil, nil, fmt.Errorf("%s noise: %w", name, err)
	}

	f := terrain.Fractal{Kernel: kernel}
	if f.Octaves, err = p.Int("octaves"); err != nil {
		return nil, nil, err
	}
	if f.Lacunarity, err = p.Float("lacunarity"); err != nil {
		return nil, nil, err
	}
	if f.Persistence, err = p.Float("persistence"); err != nil {
		return nil, nil, err
	}
	if f.Scale, err = p.FloatOr("scale", 1); err != nil {
		return nil, nil, err
	}
	return f, kernel, nil
}

// kernel builds a noise kernel seeded from the run's generator.
func (r *run) kernel(name string, p config.Parameters) (noise.Kernel, error) {
	kind, err := noise.ParseKind(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrBadConfig, err)
	}

	switch kind {
	case noise.KindGradient:
		return noise.NewGradient(r.rng), nil

	case noise.KindSimplex:
		return noise.NewSimplex(r.rng), nil

	case noise.KindValue:
		curveName, err := p.StringOr("curve", "linear")
		if err != nil {
			return nil, err
		}
		curve, err := noise.ParseCurve(curveName)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrBadConfig, err)
		}
		return noise.NewValue(r.rng, curve), nil

	case noise.KindCell:
		count, err := p.IntOr("count", 10)
		if err != nil {
			return nil, err
		}
		distName, err := p.StringOr("distance", "euclidean")
		if err != nil {
			return nil, err
		}
		dist, err := noise.ParseDistance(distName)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrBadConfig, err)
		}
		var coeffs []float64
		if p.Has("coeffs") {
			if coeffs, err = p.Floats("coeffs", 0); err != nil {
				return nil, err
			}
		}
		return noise.NewCell(r.rng, count, dist, coeffs), nil

	case noise.KindClassic:
		return classicgen.NewKernel(r.rng), nil

	case noise.KindScript:
		src, err := r.scriptSource(p)
		if err != nil {
			return nil, err
		}
		return lua.NewNoise(src, r.rng.Uint32())
	}
	return nil, fmt.Errorf("%w: unknown noise %q", config.ErrBadConfig, name)
}
