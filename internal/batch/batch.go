// Package batch generates several independent heightmaps concurrently.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/OCharnyshevich/heightmap/pkg/diamondsquare"
)

// Request describes a batch. Map i is generated with seed Seed+i.
type Request struct {
	Width, Height int
	Options       diamondsquare.Options
	Seed          int64
	Count         int
	Workers       int // 0 = GOMAXPROCS
	Name          string

	// NewSource builds the random source for one map. Defaults to
	// diamondsquare.NewRandSource.
	NewSource func(seed int64) diamondsquare.Source
}

// Result is one generated map.
type Result struct {
	Index     int
	Name      string
	Seed      int64
	Heightmap *diamondsquare.Heightmap
}

// MapName returns the name of map i in a batch of count maps.
func MapName(name string, i, count int) string {
	if count == 1 {
		return name
	}
	return fmt.Sprintf("%s-%d", name, i)
}

// Run generates req.Count maps and returns them in index order. The first
// failure cancels maps that have not started yet.
func Run(ctx context.Context, req Request, log *slog.Logger) ([]Result, error) {
	if req.Count < 1 {
		return nil, fmt.Errorf("batch count %d must be at least 1", req.Count)
	}
	newSource := req.NewSource
	if newSource == nil {
		newSource = func(seed int64) diamondsquare.Source { return diamondsquare.NewRandSource(seed) }
	}
	workers := req.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, req.Count)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range req.Count {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			name := MapName(req.Name, i, req.Count)
			seed := req.Seed + int64(i)

			opts := req.Options
			opts.Observer = func(p diamondsquare.Pass) {
				log.Debug("refinement pass", "map", name, "pass", p.Index, "step", p.Step, "amplitude", p.Amplitude)
			}

			start := time.Now()
			hm, err := diamondsquare.Generate(req.Width, req.Height, opts, newSource(seed))
			if err != nil {
				return fmt.Errorf("generate %s: %w", name, err)
			}
			log.Info("generated map", "map", name, "seed", seed, "width", hm.Width, "height", hm.Height,
				"elapsed", time.Since(start))

			results[i] = Result{Index: i, Name: name, Seed: seed, Heightmap: hm}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
