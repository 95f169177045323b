package lua

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"sync"

	"github.com/Shopify/go-lua"
)

// VM wraps a Lua state without io, os or file loading. A state is not safe for
// concurrent use, so every call takes the VM lock.
//
// math.random and math.randomseed draw from a generator owned by the VM, so a
// script sees the same sequence for the same seed.
type VM struct {
	state *lua.State
	mu    sync.Mutex
	rng   *rand.Rand
}

func NewVM() *VM {
	vm := &VM{state: lua.NewState(), rng: newRand(0)}
	vm.openSafeLibraries()
	return vm
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

func (vm *VM) openSafeLibraries() {
	lua.OpenLibraries(vm.state)

	for _, name := range []string{"io", "os", "debug", "dofile", "loadfile", "require"} {
		vm.state.PushNil()
		vm.state.SetGlobal(name)
	}

	vm.state.Global("math")
	vm.state.PushGoFunction(vm.random)
	vm.state.SetField(-2, "random")
	vm.state.PushGoFunction(vm.randomSeed)
	vm.state.SetField(-2, "randomseed")
	vm.state.Pop(1)
}

// Seed resets the generator behind math.random.
func (vm *VM) Seed(seed uint64) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.rng = newRand(seed)
}

// random follows Lua's math.random: no argument gives [0, 1), one gives an
// integer in [1, m] and two give an integer in [m, n].
func (vm *VM) random(state *lua.State) int {
	r := vm.rng.Float64()
	switch state.Top() {
	case 0:
		state.PushNumber(r)
	case 1:
		hi := lua.CheckNumber(state, 1)
		lua.ArgumentCheck(state, 1 <= hi, 1, "interval is empty")
		state.PushNumber(math.Floor(r*hi) + 1)
	case 2:
		lo := lua.CheckNumber(state, 1)
		hi := lua.CheckNumber(state, 2)
		lua.ArgumentCheck(state, lo <= hi, 2, "interval is empty")
		state.PushNumber(math.Floor(r*(hi-lo+1)) + lo)
	default:
		lua.Errorf(state, "wrong number of arguments")
	}
	return 1
}

func (vm *VM) randomSeed(state *lua.State) int {
	seed := lua.CheckNumber(state, 1)
	vm.rng = newRand(uint64(int64(seed)))
	return 0
}

func (vm *VM) LoadFile(path string) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if err := lua.DoFile(vm.state, path); err != nil {
		return fmt.Errorf("failed to load lua file %s: %w", path, err)
	}
	return nil
}

func (vm *VM) LoadString(code string) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if err := lua.DoString(vm.state, code); err != nil {
		return fmt.Errorf("failed to load lua string: %w", err)
	}
	return nil
}

func (vm *VM) SetGlobalNumber(name string, value float64) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.state.PushNumber(value)
	vm.state.SetGlobal(name)
}

func (vm *VM) GetGlobalString(name string) (string, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.state.Global(name)
	if !vm.state.IsString(-1) {
		vm.state.Pop(1)
		return "", fmt.Errorf("global %s is not a string", name)
	}
	value, _ := vm.state.ToString(-1)
	vm.state.Pop(1)
	return value, nil
}

func (vm *VM) HasFunction(name string) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.state.Global(name)
	isFunc := vm.state.IsFunction(-1)
	vm.state.Pop(1)
	return isFunc
}

// CallNumber calls the global function name with numeric arguments and
// returns its single numeric result.
func (vm *VM) CallNumber(name string, args ...float64) (float64, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.state.Global(name)
	if !vm.state.IsFunction(-1) {
		vm.state.Pop(1)
		return 0, fmt.Errorf("global %s is not a function", name)
	}

	for _, arg := range args {
		vm.state.PushNumber(arg)
	}

	if err := vm.state.ProtectedCall(len(args), 1, 0); err != nil {
		return 0, vm.enhanceError(fmt.Sprintf("function %s", name), err)
	}

	value, ok := vm.state.ToNumber(-1)
	vm.state.Pop(1)
	if !ok {
		return 0, fmt.Errorf("function %s did not return a number", name)
	}
	return value, nil
}

func (vm *VM) enhanceError(context string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("[Lua Error] %s: %w", context, err)
}

func (vm *VM) RegisterFunction(name string, fn lua.Function) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.state.Register(name, fn)
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
