package grid

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minRowsPerBand keeps tiny grids on a single goroutine.
const minRowsPerBand = 16

// ParallelRows splits [0, height) into contiguous bands and runs fn on each
// band concurrently. fn must only write cells of its own rows.
func ParallelRows(height int, fn func(y0, y1 int)) {
	if height <= 0 {
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if limit := height / minRowsPerBand; workers > limit {
		workers = limit
	}
	if workers <= 1 {
		fn(0, height)
		return
	}

	band := (height + workers - 1) / workers

	var g errgroup.Group
	g.SetLimit(workers)
	for y0 := 0; y0 < height; y0 += band {
		y1 := min(y0+band, height)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	_ = g.Wait()
}
