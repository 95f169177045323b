package noise

import (
	"fmt"
	"math"
	"strings"
)

// Curve eases an interpolation parameter t in [0, 1].
type Curve func(t float64) float64

func Linear(t float64) float64 { return t }

func Cubic(t float64) float64 { return -2*t*t*t + 3*t*t }

func Quintic(t float64) float64 { return t * t * t * (t*(t*6-15) + 10) }

func Cosine(t float64) float64 { return (1 - math.Cos(math.Pi*t)) * 0.5 }

func ParseCurve(name string) (Curve, error) {
	switch strings.ToLower(name) {
	case "", "linear":
		return Linear, nil
	case "cubic":
		return Cubic, nil
	case "quintic":
		return Quintic, nil
	case "cosine":
		return Cosine, nil
	default:
		return nil, fmt.Errorf("unknown curve %q", name)
	}
}

func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}
