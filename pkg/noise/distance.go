package noise

import (
	"fmt"
	"math"
	"strings"
)

type Distance func(ax, ay, bx, by float64) float64

func Manhattan(ax, ay, bx, by float64) float64 {
	return math.Abs(ax-bx) + math.Abs(ay-by)
}

func Euclidean(ax, ay, bx, by float64) float64 {
	return math.Hypot(ax-bx, ay-by)
}

func Chebyshev(ax, ay, bx, by float64) float64 {
	return math.Max(math.Abs(ax-bx), math.Abs(ay-by))
}

func ParseDistance(name string) (Distance, error) {
	switch strings.ToLower(name) {
	case "manhattan":
		return Manhattan, nil
	case "", "euclidean":
		return Euclidean, nil
	case "chebyshev":
		return Chebyshev, nil
	default:
		return nil, fmt.Errorf("unknown distance %q", name)
	}
}
