package pipeline

import (
	"path/filepath"

	"github.com/siohaza/mapmaker/internal/output"
	"github.com/siohaza/mapmaker/pkg/config"
	"github.com/siohaza/mapmaker/pkg/grid"
)

// output writes h when the stage asked for it. Relative filenames land in
// the output directory.
func (r *run) output(h *grid.HeightMap, o *config.Output) error {
	if o == nil {
		return nil
	}

	kind, err := output.ParseKind(o.Type, o.Filename)
	if err != nil {
		return err
	}

	opts := output.DefaultOptions()
	if opts.SeaLevel, err = o.Parameters.FloatOr("sea_level", opts.SeaLevel); err != nil {
		return err
	}
	if opts.Shaded, err = o.Parameters.BoolOr("shaded", opts.Shaded); err != nil {
		return err
	}
	if opts.Depth, err = o.Parameters.IntOr("depth", opts.Depth); err != nil {
		return err
	}

	path := o.Filename
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.opts.OutputDir, path)
	}
	if err := output.WriteFile(path, kind, h, opts); err != nil {
		return err
	}

	r.logger.Info("wrote map", "path", path, "type", kind.String())
	return nil
}
