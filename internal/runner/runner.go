// Package runner ties generation, export and persistence together for the CLI.
package runner

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/OCharnyshevich/heightmap/internal/batch"
	"github.com/OCharnyshevich/heightmap/internal/config"
	"github.com/OCharnyshevich/heightmap/internal/export"
	"github.com/OCharnyshevich/heightmap/internal/storage"
	"github.com/OCharnyshevich/heightmap/pkg/diamondsquare"
)

// Runner generates the maps described by a config.
type Runner struct {
	cfg *config.Config
	log *slog.Logger
}

// New creates a Runner with the given config and logger.
func New(cfg *config.Config, log *slog.Logger) *Runner {
	return &Runner{cfg: cfg, log: log}
}

// Run generates, exports and stores every map of the batch.
func (r *Runner) Run(ctx context.Context) ([]batch.Result, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	format, err := r.cfg.ExportFormat()
	if err != nil {
		return nil, err
	}

	store, err := storage.New(r.cfg.DataDir, r.log)
	if err != nil {
		return nil, err
	}
	catalog, err := storage.OpenCatalog(ctx, r.cfg.CatalogPath())
	if err != nil {
		return nil, err
	}
	defer catalog.Close()

	r.log.Info("generating",
		"width", r.cfg.Width,
		"height", r.cfg.Height,
		"sampleSize", r.cfg.SampleSize,
		"scale", r.cfg.Scale,
		"scaleReduction", r.cfg.ScaleReduction,
		"seed", r.cfg.Seed,
		"count", r.cfg.Count,
	)

	req := batch.Request{
		Width:   r.cfg.Width,
		Height:  r.cfg.Height,
		Options: r.cfg.Options(),
		Seed:    r.cfg.Seed,
		Count:   r.cfg.Count,
		Workers: r.cfg.Workers,
		Name:    r.cfg.Name,
	}
	if r.cfg.Entropy {
		req.NewSource = func(int64) diamondsquare.Source { return diamondsquare.NewReaderSource(rand.Reader) }
	}
	results, err := batch.Run(ctx, req, r.log)
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		meta := export.Metadata{
			Seed:           res.Seed,
			SampleSize:     r.cfg.SampleSize,
			Scale:          r.cfg.Scale,
			ScaleReduction: r.cfg.ScaleReduction,
		}
		if r.cfg.Entropy {
			meta.Seed, meta.Entropy = 0, true
		}

		if format != "" {
			out := OutputPath(r.cfg.Output, res.Index, r.cfg.Count)
			if err := writeFile(out, format, res.Name, res.Heightmap, meta); err != nil {
				return nil, err
			}
			r.log.Info("exported map", "map", res.Name, "path", out, "format", format)
		}

		md := storage.MapDataFromHeightmap(res.Name, res.Heightmap, meta)
		if err := store.SaveMap(md); err != nil {
			return nil, fmt.Errorf("save map %s: %w", res.Name, err)
		}
		if _, err := catalog.Add(ctx, md.Entry(store.MapPath(res.Name))); err != nil {
			return nil, err
		}
	}

	if err := store.SaveConfig(r.cfg); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}
	return results, nil
}

// List writes the catalog as a table.
func (r *Runner) List(ctx context.Context, w io.Writer) error {
	catalog, err := storage.OpenCatalog(ctx, r.cfg.CatalogPath())
	if err != nil {
		return err
	}
	defer catalog.Close()

	entries, err := catalog.List(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tSAMPLE\tSCALE\tREDUCTION\tSEED\tMIN\tMAX\tCREATED")
	for _, e := range entries {
		seed := strconv.FormatInt(e.Seed, 10)
		if e.Entropy {
			seed = "entropy"
		}
		fmt.Fprintf(tw, "%s\t%dx%d\t%d\t%g\t%g\t%s\t%.3f\t%.3f\t%s\n",
			e.Name, e.Width, e.Height, e.SampleSize, e.Scale, e.ScaleReduction, seed, e.Min, e.Max,
			e.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

// Load looks name up in the catalog and reads the stored map.
func (r *Runner) Load(ctx context.Context, name string) (*storage.MapData, error) {
	catalog, err := storage.OpenCatalog(ctx, r.cfg.CatalogPath())
	if err != nil {
		return nil, err
	}
	defer catalog.Close()

	entry, err := catalog.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	store, err := storage.New(r.cfg.DataDir, r.log)
	if err != nil {
		return nil, err
	}
	md, err := store.LoadMap(entry.Name)
	if err != nil {
		return nil, err
	}
	if md == nil {
		return nil, fmt.Errorf("map %s is catalogued at %s but the file is missing", name, entry.Path)
	}
	r.log.Debug("loaded map", "map", name, "path", entry.Path)
	return md, nil
}

// Export writes a stored map to out. The configured format wins over the
// extension of out.
func (r *Runner) Export(md *storage.MapData, out string) error {
	format, err := export.FormatFromPath(out)
	if r.cfg.Format != "" {
		format, err = export.ParseFormat(r.cfg.Format)
	}
	if err != nil {
		return err
	}
	if err := writeFile(out, format, md.Name, md.Heightmap(), md.Metadata); err != nil {
		return err
	}
	r.log.Info("exported map", "map", md.Name, "path", out, "format", format)
	return nil
}

// OutputPath returns the export path of map i; batches get "-i" before the extension.
func OutputPath(out string, i, count int) string {
	if count == 1 {
		return out
	}
	ext := filepath.Ext(out)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(out, ext), i, ext)
}

func writeFile(path string, format export.Format, name string, hm *diamondsquare.Heightmap, meta export.Metadata) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.Write(f, format, hm, meta); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
