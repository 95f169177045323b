package config

import (
	"fmt"
	"slices"
	"strings"
)

var (
	GeneratorNames = []string{"diamond-square", "midpoint-displacement", "fractal", "hills", "flat", "classic"}
	ModifierNames  = []string{
		"fast-erosion", "thermal-erosion", "hydraulic-erosion",
		"islandize", "gaussize", "flatten", "smooth", "sea-level",
		"script", "intercept",
	}
	FinalizerNames = []string{"erosion-score", "playability"}
	NoiseNames     = []string{"gradient", "perlin", "value", "simplex", "cell", "worley", "classic", "script"}
	OutputTypes    = []string{"grayscale", "colored", "png", "tiff", "vxl"}
)

type check func(p Parameters) error

var generatorChecks = map[string]check{
	"diamond-square":        checkCorners,
	"midpoint-displacement": checkCorners,
	"fractal":               checkFractal,
	"hills": func(p Parameters) error {
		if err := positiveInt(p, "count", true); err != nil {
			return err
		}
		lo, err := p.FloatOr("radius_min", 0.05)
		if err != nil {
			return err
		}
		hi, err := p.FloatOr("radius_max", 0.15)
		if err != nil {
			return err
		}
		if lo <= 0 || hi <= 0 {
			return fmt.Errorf("%w: hill radii must be positive", ErrBadConfig)
		}
		return nil
	},
	"flat": none,
	"classic": func(p Parameters) error {
		if err := positiveInt(p, "octaves", false); err != nil {
			return err
		}
		return unitRange(p, "persistence", false)
	},
}

var modifierChecks = map[string]check{
	"fast-erosion":    checkErosion,
	"thermal-erosion": checkErosion,
	"hydraulic-erosion": func(p Parameters) error {
		if err := positiveInt(p, "iterations", true); err != nil {
			return err
		}
		for _, key := range []string{"rain_amount", "solubility", "capacity"} {
			if err := nonNegative(p, key); err != nil {
				return err
			}
		}
		return unitRange(p, "evaporation", true)
	},
	"islandize": func(p Parameters) error { return nonNegative(p, "border") },
	"gaussize":  func(p Parameters) error { return nonNegative(p, "spread") },
	"flatten":   func(p Parameters) error { return nonNegative(p, "factor") },
	"smooth":    func(p Parameters) error { return positiveInt(p, "iterations", true) },
	"sea-level": func(p Parameters) error {
		v, err := p.Float("level")
		if err != nil {
			return err
		}
		if v <= 0 || v >= 1 {
			return fmt.Errorf("%w: \"level\" must be in (0, 1), got %v", ErrBadConfig, v)
		}
		return nil
	},
	"script": checkScript,
}

// intercept recurses into ValidateStages, which reads modifierChecks.
func init() {
	modifierChecks["intercept"] = checkIntercept
}

var finalizerChecks = map[string]check{
	"erosion-score": none,
	"playability": func(p Parameters) error {
		if err := unitRange(p, "sea_level", true); err != nil {
			return err
		}
		for _, key := range []string{"unit_size", "building_size"} {
			if err := positiveInt(p, key, true); err != nil {
				return err
			}
		}
		for _, key := range []string{"unit_talus", "building_talus"} {
			if err := nonNegative(p, key); err != nil {
				return err
			}
		}
		_, err := p.BoolOr("output_intermediates", false)
		return err
	},
}

var noiseChecks = map[string]check{
	"gradient": none,
	"perlin":   none,
	"simplex":  none,
	"classic":  none,
	"value": func(p Parameters) error {
		_, err := p.StringOr("curve", "linear")
		return err
	},
	"cell":   checkCell,
	"worley": checkCell,
	"script": checkScript,
}

func (d *Document) Validate() error {
	if d.Generator == nil {
		return fmt.Errorf("%w: missing generator definition", ErrBadConfig)
	}
	if err := d.Generator.validate(); err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	if err := ValidateStages(d.Modifiers, d.Finalizer); err != nil {
		return err
	}
	return nil
}

// ValidateStages checks a modifier list and an optional finalizer.
func ValidateStages(modifiers []Stage, finalizer *Stage) error {
	for i := range modifiers {
		if err := modifiers[i].validate(modifierChecks, ModifierNames); err != nil {
			return fmt.Errorf("modifiers[%d]: %w", i, err)
		}
	}
	if finalizer != nil {
		if err := finalizer.validate(finalizerChecks, FinalizerNames); err != nil {
			return fmt.Errorf("finalizer: %w", err)
		}
	}
	return nil
}

func (g *Generator) validate() error {
	if g.Size.Width <= 0 || g.Size.Height <= 0 {
		return fmt.Errorf("%w: size must be positive, got %dx%d", ErrBadConfig, g.Size.Width, g.Size.Height)
	}
	fn, ok := generatorChecks[g.Name]
	if !ok {
		return fmt.Errorf("%w: unknown generator %q (want one of %s)", ErrBadConfig, g.Name, strings.Join(GeneratorNames, ", "))
	}
	if err := fn(g.Parameters); err != nil {
		return fmt.Errorf("%s: %w", g.Name, err)
	}
	return g.Output.validate()
}

func (s *Stage) validate(checks map[string]check, names []string) error {
	fn, ok := checks[s.Name]
	if !ok {
		return fmt.Errorf("%w: unknown stage %q (want one of %s)", ErrBadConfig, s.Name, strings.Join(names, ", "))
	}
	if err := fn(s.Parameters); err != nil {
		return fmt.Errorf("%s: %w", s.Name, err)
	}
	return s.Output.validate()
}

func (o *Output) validate() error {
	if o == nil {
		return nil
	}
	if o.Filename == "" {
		return fmt.Errorf("%w: output is missing a filename", ErrBadConfig)
	}
	if o.Type == "" {
		return nil
	}
	if !slices.Contains(OutputTypes, o.Type) {
		return fmt.Errorf("%w: unknown output type %q (want one of %s)", ErrBadConfig, o.Type, strings.Join(OutputTypes, ", "))
	}
	switch o.Type {
	case "colored":
		if err := unitRange(o.Parameters, "sea_level", false); err != nil {
			return err
		}
		_, err := o.Parameters.BoolOr("shaded", false)
		return err
	case "vxl":
		depth, err := o.Parameters.IntOr("depth", 64)
		if err != nil {
			return err
		}
		if depth < 2 || depth > 256 {
			return fmt.Errorf("%w: vxl depth must be in [2, 256], got %d", ErrBadConfig, depth)
		}
	}
	return nil
}

func none(Parameters) error { return nil }

func checkCorners(p Parameters) error {
	_, err := p.Corners("values")
	return err
}

func checkFractal(p Parameters) error {
	name, err := p.StringOr("noise", "")
	if err != nil {
		return err
	}
	fn, ok := noiseChecks[name]
	if !ok {
		return fmt.Errorf("%w: unknown noise %q (want one of %s)", ErrBadConfig, name, strings.Join(NoiseNames, ", "))
	}
	np, err := p.Table("noise_parameters")
	if err != nil {
		return err
	}
	if err := fn(np); err != nil {
		return fmt.Errorf("%s noise: %w", name, err)
	}

	if err := positiveInt(p, "octaves", true); err != nil {
		return err
	}
	if _, err := p.Float("lacunarity"); err != nil {
		return err
	}
	if _, err := p.Float("persistence"); err != nil {
		return err
	}
	_, err = p.FloatOr("scale", 1)
	return err
}

func checkCell(p Parameters) error {
	if err := positiveInt(p, "count", false); err != nil {
		return err
	}
	if _, err := p.StringOr("distance", "euclidean"); err != nil {
		return err
	}
	if p.Has("coeffs") {
		if _, err := p.Floats("coeffs", 0); err != nil {
			return err
		}
	}
	return nil
}

func checkErosion(p Parameters) error {
	if err := positiveInt(p, "iterations", true); err != nil {
		return err
	}
	if err := nonNegative(p, "talus"); err != nil {
		return err
	}
	return unitRange(p, "fraction", true)
}

func checkScript(p Parameters) error {
	file, err := p.StringOr("file", "")
	if err != nil {
		return err
	}
	source, err := p.StringOr("source", "")
	if err != nil {
		return err
	}
	if (file == "") == (source == "") {
		return fmt.Errorf("%w: exactly one of \"file\" or \"source\" is required", ErrBadConfig)
	}
	return nil
}

func checkIntercept(p Parameters) error {
	modifiers, err := p.Stages("modifiers")
	if err != nil {
		return err
	}
	finalizer, err := p.Stage("finalizer")
	if err != nil {
		return err
	}
	return ValidateStages(modifiers, finalizer)
}

func positiveInt(p Parameters, key string, required bool) error {
	if !required && !p.Has(key) {
		return nil
	}
	v, err := p.Int(key)
	if err != nil {
		return err
	}
	if v < 1 {
		return fmt.Errorf("%w: %q must be at least 1, got %d", ErrBadConfig, key, v)
	}
	return nil
}

func nonNegative(p Parameters, key string) error {
	v, err := p.Float(key)
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("%w: %q must not be negative, got %v", ErrBadConfig, key, v)
	}
	return nil
}

func unitRange(p Parameters, key string, required bool) error {
	if !required && !p.Has(key) {
		return nil
	}
	v, err := p.Float(key)
	if err != nil {
		return err
	}
	if v < 0 || v > 1 {
		return fmt.Errorf("%w: %q must be in [0, 1], got %v", ErrBadConfig, key, v)
	}
	return nil
}
