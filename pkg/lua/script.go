package lua

import (
	"fmt"
	"sync"

	"github.com/Shopify/go-lua"

	"github.com/siohaza/mapmaker/pkg/grid"
)

// Source names a script either by path or by inline code.
type Source struct {
	File string
	Code string
}

func (s Source) load(vm *VM) error {
	if s.File != "" {
		if !FileExists(s.File) {
			return fmt.Errorf("script %s does not exist", s.File)
		}
		return vm.LoadFile(s.File)
	}
	return vm.LoadString(s.Code)
}

// Script is a heightmap modifier backed by a Lua function
// modify(x, y, h, width, height) returning the new height of a cell.
// get_height(x, y) gives the script read access to the input map.
type Script struct {
	vm          *VM
	Name        string
	Description string

	current *grid.HeightMap
}

func NewScript(src Source) (*Script, error) {
	vm := NewVM()
	registerHelpers(vm)

	s := &Script{vm: vm, Name: "script"}
	vm.RegisterFunction("get_height", s.getHeight)

	if err := src.load(vm); err != nil {
		return nil, err
	}
	if !vm.HasFunction("modify") {
		return nil, fmt.Errorf("script does not define modify(x, y, h, width, height)")
	}

	if name, err := vm.GetGlobalString("name"); err == nil {
		s.Name = name
	}
	if desc, err := vm.GetGlobalString("description"); err == nil {
		s.Description = desc
	}
	return s, nil
}

// Apply calls modify once per cell in row-major order.
func (s *Script) Apply(h *grid.HeightMap) (*grid.HeightMap, error) {
	s.current = h
	defer func() { s.current = nil }()

	out := grid.NewLike[float64](h)
	w, ht := float64(h.Width()), float64(h.Height())

	for y := 0; y < h.Height(); y++ {
		for x := 0; x < h.Width(); x++ {
			v, err := s.vm.CallNumber("modify", float64(x), float64(y), h.Get(x, y), w, ht)
			if err != nil {
				return nil, fmt.Errorf("%s at (%d, %d): %w", s.Name, x, y, err)
			}
			out.Put(x, y, v)
		}
	}
	return out, nil
}

// getHeight runs with the VM lock held by CallNumber.
func (s *Script) getHeight(state *lua.State) int {
	x := lua.CheckInteger(state, 1)
	y := lua.CheckInteger(state, 2)

	if s.current == nil || !s.current.Contains(x, y) {
		lua.Errorf(state, "get_height: (%d, %d) is outside the map", x, y)
		return 0
	}
	state.PushNumber(s.current.Get(x, y))
	return 1
}

// Noise is a noise kernel backed by a Lua function noise(x, y). The kernel
// seed is exposed to the script as the global seed and also seeds math.random.
// Samples are serialized through the VM lock; the first failure is kept and
// later samples return 0.
type Noise struct {
	vm *VM

	mu  sync.Mutex
	err error
}

func NewNoise(src Source, seed uint32) (*Noise, error) {
	vm := NewVM()
	registerHelpers(vm)
	vm.SetGlobalNumber("seed", float64(seed))
	vm.Seed(uint64(seed))

	if err := src.load(vm); err != nil {
		return nil, err
	}
	if !vm.HasFunction("noise") {
		return nil, fmt.Errorf("script does not define noise(x, y)")
	}
	return &Noise{vm: vm}, nil
}

func (n *Noise) Noise(x, y float64) float64 {
	if n.Err() != nil {
		return 0
	}

	v, err := n.vm.CallNumber("noise", x, y)
	if err != nil {
		n.mu.Lock()
		if n.err == nil {
			n.err = err
		}
		n.mu.Unlock()
		return 0
	}
	return v
}

// Sequential reports that a script may keep state between calls, so samples
// must be taken in a fixed order.
func (n *Noise) Sequential() bool { return true }

// Err reports the first sampling failure.
func (n *Noise) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.err
}
