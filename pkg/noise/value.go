package noise

import (
	"math"
	"math/rand/v2"
)

const (
	valueTableSize = 256
	valueShuffles  = 2560
)

// Value interpolates random lattice values with an easing curve.
type Value struct {
	curve  Curve
	values [valueTableSize]float64
	perm   [valueTableSize]uint8
}

// NewValue draws the 256 lattice values first, then shuffles the permutation
// with 2560 random swaps.
func NewValue(rng *rand.Rand, curve Curve) *Value {
	if curve == nil {
		curve = Linear
	}

	v := &Value{curve: curve}
	for i := range v.values {
		v.values[i] = rng.Float64()
	}
	for i := range v.perm {
		v.perm[i] = uint8(i)
	}
	for i := 0; i < valueShuffles; i++ {
		j := rng.IntN(valueTableSize)
		k := rng.IntN(valueTableSize)
		v.perm[j], v.perm[k] = v.perm[k], v.perm[j]
	}
	return v
}

func (v *Value) lattice(x, y uint8) float64 {
	return v.values[v.perm[v.perm[x]+y]]
}

func (v *Value) Noise(x, y float64) float64 {
	fx := math.Floor(x)
	fy := math.Floor(y)
	rx := x - fx
	ry := y - fy

	qx := uint8(int64(fx) & 0xFF)
	qy := uint8(int64(fy) & 0xFF)

	nw := v.lattice(qx, qy)
	ne := v.lattice(qx+1, qy)
	sw := v.lattice(qx, qy+1)
	se := v.lattice(qx+1, qy+1)

	tx := v.curve(rx)
	n := lerp(nw, ne, tx)
	s := lerp(sw, se, tx)
	return lerp(n, s, v.curve(ry))
}
