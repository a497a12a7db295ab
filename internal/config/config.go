package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/OCharnyshevich/heightmap/internal/export"
	"github.com/OCharnyshevich/heightmap/pkg/diamondsquare"
)

// Config holds everything a heightmap run needs.
type Config struct {
	Width          int     `json:"width" yaml:"width"`
	Height         int     `json:"height" yaml:"height"`
	SampleSize     int     `json:"sample_size" yaml:"sample_size"`
	Scale          float64 `json:"scale" yaml:"scale"`
	ScaleReduction float64 `json:"scale_reduction" yaml:"scale_reduction"`
	Seed           int64   `json:"seed" yaml:"seed"`
	Entropy        bool    `json:"entropy" yaml:"entropy"` // draw from crypto/rand instead of Seed

	Count   int `json:"count" yaml:"count"`     // maps per run, seeds Seed..Seed+Count-1
	Workers int `json:"workers" yaml:"workers"` // 0 = GOMAXPROCS

	Name     string `json:"name" yaml:"name"`
	Output   string `json:"output" yaml:"output"`
	Format   string `json:"format" yaml:"format"` // empty = from Output extension
	DataDir  string `json:"data_dir" yaml:"data_dir"`
	Catalog  string `json:"catalog" yaml:"catalog"` // empty = <data_dir>/catalog.db
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// DefaultConfig returns a Config with sensible defaults: a 400x600 map
// sampled every 32 cells.
func DefaultConfig() *Config {
	return &Config{
		Width:          400,
		Height:         600,
		SampleSize:     32,
		Scale:          1.0,
		ScaleReduction: 2.0,
		Count:          1,
		Name:           "landscape",
		Output:         "landscape.png",
		DataDir:        "data",
		LogLevel:       "info",
	}
}

// Merge applies file-loaded config values into cfg, but only for fields
// that were NOT explicitly set via CLI flags. explicitFlags contains the
// flag names that were explicitly provided on the command line.
func Merge(cfg *Config, fromFile *Config, explicitFlags map[string]bool) {
	if !explicitFlags["width"] {
		cfg.Width = fromFile.Width
	}
	if !explicitFlags["height"] {
		cfg.Height = fromFile.Height
	}
	if !explicitFlags["sample-size"] {
		cfg.SampleSize = fromFile.SampleSize
	}
	if !explicitFlags["scale"] {
		cfg.Scale = fromFile.Scale
	}
	if !explicitFlags["scale-reduction"] {
		cfg.ScaleReduction = fromFile.ScaleReduction
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["entropy"] {
		cfg.Entropy = fromFile.Entropy
	}
	if !explicitFlags["count"] {
		cfg.Count = fromFile.Count
	}
	if !explicitFlags["workers"] {
		cfg.Workers = fromFile.Workers
	}
	if !explicitFlags["name"] {
		cfg.Name = fromFile.Name
	}
	if !explicitFlags["o"] {
		cfg.Output = fromFile.Output
	}
	if !explicitFlags["format"] {
		cfg.Format = fromFile.Format
	}
	if !explicitFlags["data-dir"] {
		cfg.DataDir = fromFile.DataDir
	}
	if !explicitFlags["catalog"] {
		cfg.Catalog = fromFile.Catalog
	}
	if !explicitFlags["log-level"] {
		cfg.LogLevel = fromFile.LogLevel
	}
}

// Load reads a YAML (.yaml, .yml) or JSON file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.New("width and height must be positive")
	}
	if c.SampleSize <= 0 || c.SampleSize&(c.SampleSize-1) != 0 {
		return errors.New("sample_size must be a positive power of two")
	}
	if !(c.ScaleReduction > 0) {
		return errors.New("scale_reduction must be positive")
	}
	if c.Count < 1 {
		return errors.New("count must be at least 1")
	}
	if c.Workers < 0 {
		return errors.New("workers cannot be negative")
	}
	if c.Name == "" {
		return errors.New("name must be set")
	}
	if c.Format != "" && c.Output == "" {
		return errors.New("format requires an output path")
	}
	if _, err := c.ExportFormat(); err != nil {
		return err
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Options converts the generation settings.
func (c *Config) Options() diamondsquare.Options {
	return diamondsquare.Options{
		SampleSize:     c.SampleSize,
		Scale:          c.Scale,
		ScaleReduction: c.ScaleReduction,
	}
}

// ExportFormat resolves Format, falling back to the Output extension.
// No output means nothing is exported and the format is empty.
func (c *Config) ExportFormat() (export.Format, error) {
	if c.Format != "" {
		return export.ParseFormat(c.Format)
	}
	if c.Output == "" {
		return "", nil
	}
	return export.FormatFromPath(c.Output)
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// CatalogPath returns the SQLite catalog location.
func (c *Config) CatalogPath() string {
	if c.Catalog != "" {
		return c.Catalog
	}
	return filepath.Join(c.DataDir, "catalog.db")
}
