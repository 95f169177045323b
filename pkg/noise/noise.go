// Package noise holds the scalar field kernels sampled by the fractal generator.
// Every kernel is deterministic for the random source it was built from and safe
// for concurrent sampling.
package noise

import (
	"fmt"
	"strings"
)

type Kernel interface {
	Noise(x, y float64) float64
}

// Sequential is implemented by kernels whose output depends on call order.
// Samplers must visit such a kernel in raster order from a single goroutine.
type Sequential interface {
	Sequential() bool
}

// Func adapts a plain function to Kernel.
type Func func(x, y float64) float64

func (f Func) Noise(x, y float64) float64 { return f(x, y) }

// Null is the kernel used when no noise is wanted.
var Null Kernel = Func(func(float64, float64) float64 { return 0 })

type Kind int

const (
	KindGradient Kind = iota
	KindValue
	KindSimplex
	KindCell
	KindClassic
	KindScript
)

func (k Kind) String() string {
	switch k {
	case KindGradient:
		return "gradient"
	case KindValue:
		return "value"
	case KindSimplex:
		return "simplex"
	case KindCell:
		return "cell"
	case KindClassic:
		return "classic"
	case KindScript:
		return "script"
	default:
		return "unknown"
	}
}

func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "gradient", "perlin":
		return KindGradient, nil
	case "value":
		return KindValue, nil
	case "simplex":
		return KindSimplex, nil
	case "cell", "worley":
		return KindCell, nil
	case "classic":
		return KindClassic, nil
	case "script":
		return KindScript, nil
	default:
		return 0, fmt.Errorf("unknown noise %q", name)
	}
}
