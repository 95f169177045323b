package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/siohaza/mapmaker/internal/output"
	"github.com/siohaza/mapmaker/pkg/analysis"
	"github.com/siohaza/mapmaker/pkg/config"
	"github.com/siohaza/mapmaker/pkg/grid"
)

func (r *run) finalize(h *grid.HeightMap, s *config.Stage, depth int) error {
	if s == nil {
		return nil
	}

	return r.stage("finalizer", s.Name, depth, func() error {
		switch s.Name {
		case "erosion-score":
			score := analysis.ErosionScore(h)
			r.result.Erosion = &score
			r.logger.Info("erosion score", "score", score, "depth", depth)
			return nil

		case "playability":
			return r.playability(h, s.Parameters, depth)
		}
		return fmt.Errorf("%w: unknown finalizer %q", config.ErrBadConfig, s.Name)
	})
}

func (r *run) playability(h *grid.HeightMap, p config.Parameters, depth int) error {
	pl, intermediates, err := playabilityFrom(p, mapSize(h))
	if err != nil {
		return err
	}

	var traceErr error
	if intermediates {
		pl.Trace = func(name string, m *grid.BinaryMap) {
			if traceErr != nil {
				return
			}
			path := filepath.Join(r.opts.OutputDir, name+".pbm")
			if traceErr = output.WriteMaskFile(path, m); traceErr == nil {
				r.logger.Debug("wrote mask", "path", path)
			}
		}
	}

	masks, err := pl.Apply(h)
	if err != nil {
		return err
	}
	if traceErr != nil {
		return traceErr
	}

	scores := pl.Score(h, masks)
	r.result.Scores = &scores
	r.logger.Info("playability",
		"erosion", scores.Erosion,
		"unit", scores.Unit,
		"building", scores.Building,
		"score", scores.Playability(),
		"depth", depth)
	return nil
}

// playabilityFrom reads the finalizer parameters. Talus values are scaled
// down by the map size like erosion talus.
func playabilityFrom(p config.Parameters, size int) (analysis.Playability, bool, error) {
	var pl analysis.Playability
	var err error

	if pl.SeaLevel, err = p.Float("sea_level"); err != nil {
		return pl, false, err
	}
	if pl.UnitSize, err = p.Int("unit_size"); err != nil {
		return pl, false, err
	}
	if pl.BuildingSize, err = p.Int("building_size"); err != nil {
		return pl, false, err
	}
	if pl.UnitTalus, err = p.Float("unit_talus"); err != nil {
		return pl, false, err
	}
	if pl.BuildingTalus, err = p.Float("building_talus"); err != nil {
		return pl, false, err
	}
	pl.UnitTalus /= float64(size)
	pl.BuildingTalus /= float64(size)

	intermediates, err := p.BoolOr("output_intermediates", false)
	return pl, intermediates, err
}
