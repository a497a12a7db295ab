package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/OCharnyshevich/heightmap/internal/config"
	"github.com/OCharnyshevich/heightmap/internal/runner"
	"github.com/OCharnyshevich/heightmap/internal/storage"
	"github.com/OCharnyshevich/heightmap/internal/viewer"
)

func main() {
	cfg := config.DefaultConfig()

	flag.IntVar(&cfg.Width, "width", cfg.Width, "map width")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "map height")
	flag.IntVar(&cfg.SampleSize, "sample-size", cfg.SampleSize, "initial lattice half-spacing (power of two)")
	flag.Float64Var(&cfg.Scale, "scale", cfg.Scale, "initial displacement amplitude")
	flag.Float64Var(&cfg.ScaleReduction, "scale-reduction", cfg.ScaleReduction, "amplitude divisor per pass")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed of the first map")
	flag.BoolVar(&cfg.Entropy, "entropy", cfg.Entropy, "use crypto/rand instead of the seed")
	flag.IntVar(&cfg.Count, "count", cfg.Count, "number of maps to generate")
	flag.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent generators (0 = all CPUs)")
	flag.StringVar(&cfg.Name, "name", cfg.Name, "map name in the catalog")
	flag.StringVar(&cfg.Output, "o", cfg.Output, "export path (empty = no export)")
	flag.StringVar(&cfg.Format, "format", cfg.Format, "export format: png, nbt or json (default from -o extension)")
	flag.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for stored maps and the last run config")
	flag.StringVar(&cfg.Catalog, "catalog", cfg.Catalog, "catalog database (default <data-dir>/catalog.db)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	cfgPath := flag.String("config", "", "config file (yaml or json); go-getter URLs are downloaded first")
	resume := flag.Bool("resume", false, "start from the config saved by the previous run")
	list := flag.Bool("list", false, "print the catalog and exit")
	view := flag.Bool("view", false, "open the first generated map in a window")
	show := flag.String("show", "", "open a stored map by name instead of generating; with -o, re-export it")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	var level slog.LevelVar
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: &level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *resume {
		store, err := storage.New(cfg.DataDir, log)
		if err != nil {
			log.Error("open storage", "error", err)
			os.Exit(1)
		}
		saved := *cfg
		if err := store.LoadConfig(&saved); err != nil {
			log.Error("load saved config", "error", err)
			os.Exit(1)
		}
		config.Merge(cfg, &saved, explicit)
	}

	if *cfgPath != "" {
		path := *cfgPath
		if config.IsRemote(path) {
			fetched, err := config.Fetch(ctx, path, filepath.Join(cfg.DataDir, "presets"))
			if err != nil {
				log.Error("fetch config", "error", err)
				os.Exit(1)
			}
			log.Info("fetched config", "src", path, "path", fetched)
			path = fetched
		}
		fromFile, err := config.Load(path)
		if err != nil {
			log.Error("load config", "error", err)
			os.Exit(1)
		}
		config.Merge(cfg, fromFile, explicit)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(1)
	}
	lvl, _ := cfg.SlogLevel()
	level.Set(lvl)

	r := runner.New(cfg, log)
	if *list {
		if err := r.List(ctx, os.Stdout); err != nil {
			log.Error("list catalog", "error", err)
			os.Exit(1)
		}
		return
	}

	if *show != "" {
		md, err := r.Load(ctx, *show)
		if err != nil {
			log.Error("load map", "map", *show, "error", err)
			os.Exit(1)
		}
		if explicit["o"] {
			err = r.Export(md, cfg.Output)
		} else {
			err = viewer.Show(md.Name, md.Heightmap())
		}
		if err != nil {
			log.Error("show map", "map", *show, "error", err)
			os.Exit(1)
		}
		return
	}

	results, err := r.Run(ctx)
	if err != nil {
		log.Error("generate", "error", err)
		os.Exit(1)
	}

	if *view {
		first := results[0]
		if err := viewer.Show(first.Name, first.Heightmap); err != nil {
			log.Error("view", "error", err)
			os.Exit(1)
		}
	}
}
