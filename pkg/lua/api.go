package lua

import (
	"math"

	"github.com/Shopify/go-lua"
)

// registerHelpers installs the math helpers every script can rely on.
func registerHelpers(vm *VM) {
	vm.RegisterFunction("clamp", clamp)
	vm.RegisterFunction("lerp", lerp)
	vm.RegisterFunction("smoothstep", smoothstep)
	vm.RegisterFunction("distance_2d", distance2D)
}

func clamp(state *lua.State) int {
	value := lua.CheckNumber(state, 1)
	lo := lua.CheckNumber(state, 2)
	hi := lua.CheckNumber(state, 3)

	if value < lo {
		value = lo
	} else if value > hi {
		value = hi
	}

	state.PushNumber(value)
	return 1
}

func lerp(state *lua.State) int {
	a := lua.CheckNumber(state, 1)
	b := lua.CheckNumber(state, 2)
	t := lua.CheckNumber(state, 3)

	state.PushNumber(a + (b-a)*t)
	return 1
}

func smoothstep(state *lua.State) int {
	edge0 := lua.CheckNumber(state, 1)
	edge1 := lua.CheckNumber(state, 2)
	x := lua.CheckNumber(state, 3)

	if edge0 == edge1 {
		state.PushNumber(0)
		return 1
	}
	t := math.Min(math.Max((x-edge0)/(edge1-edge0), 0), 1)
	state.PushNumber(t * t * (3 - 2*t))
	return 1
}

func distance2D(state *lua.State) int {
	x1 := lua.CheckNumber(state, 1)
	y1 := lua.CheckNumber(state, 2)
	x2 := lua.CheckNumber(state, 3)
	y2 := lua.CheckNumber(state, 4)

	state.PushNumber(math.Hypot(x2-x1, y2-y1))
	return 1
}
