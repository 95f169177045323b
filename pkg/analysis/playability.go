package analysis

import (
	"fmt"

	"github.com/siohaza/mapmaker/pkg/grid"
)

// Playability decides where units can walk and where buildings fit on a
// normalized heightmap. Talus values are slope thresholds in height units.
type Playability struct {
	SeaLevel      float64
	UnitSize      int
	BuildingSize  int
	UnitTalus     float64
	BuildingTalus float64

	// Trace, when set, receives the intermediate masks unit1..3 and
	// building1..3 in the order they are computed.
	Trace func(name string, m *grid.BinaryMap)
}

// Masks holds the outcome of a playability pass. Island marks the sea.
type Masks struct {
	Island   *grid.BinaryMap
	Unit     *grid.BinaryMap
	Building *grid.BinaryMap
}

type Scores struct {
	Erosion  float64
	Unit     float64
	Building float64
}

// Playability is the product of the three scores.
func (s Scores) Playability() float64 {
	return s.Erosion * s.Unit * s.Building
}

func (p Playability) trace(name string, m *grid.BinaryMap) {
	if p.Trace != nil {
		p.Trace(name, m)
	}
}

func (p Playability) Apply(h *grid.HeightMap) (Masks, error) {
	island := Cutoff(h, p.SeaLevel)
	slope := Slope(h)

	unit, err := LogicalCombine(Cutoff(slope, p.UnitTalus), island, AndNot)
	if err != nil {
		return Masks{}, fmt.Errorf("unit mask: %w", err)
	}
	p.trace("unit1", unit)
	unit = Reachability(unit, p.UnitSize)
	p.trace("unit2", unit)
	unit = Accessibility(unit)
	p.trace("unit3", unit)

	building, err := LogicalCombine(Cutoff(slope, p.BuildingTalus), island, AndNot)
	if err != nil {
		return Masks{}, fmt.Errorf("building mask: %w", err)
	}
	p.trace("building1", building)
	building = Reachability(building, p.BuildingSize)
	p.trace("building2", building)
	building, err = LogicalCombine(building, unit, And)
	if err != nil {
		return Masks{}, fmt.Errorf("building mask: %w", err)
	}
	p.trace("building3", building)

	return Masks{Island: island, Unit: unit, Building: building}, nil
}

// Score measures h and its masks. Unit and building scores are relative to
// the land area; a map without land scores 0 on both.
func (p Playability) Score(h *grid.HeightMap, m Masks) Scores {
	s := Scores{Erosion: ErosionScore(h)}

	land := 1 - Ratio(m.Island)
	if land > 0 {
		s.Unit = Ratio(m.Unit) / land
		s.Building = Ratio(m.Building) / land
	}
	return s
}
