package config

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/OCharnyshevich/heightmap/internal/export"
)

func TestValidateDefaultConfig(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

func TestValidateDetectsInvalidConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero width", func(c *Config) { c.Width = 0 }, "width and height must be positive"},
		{"negative height", func(c *Config) { c.Height = -5 }, "width and height must be positive"},
		{"zero sample size", func(c *Config) { c.SampleSize = 0 }, "sample_size must be a positive power of two"},
		{"odd sample size", func(c *Config) { c.SampleSize = 12 }, "sample_size must be a positive power of two"},
		{"zero reduction", func(c *Config) { c.ScaleReduction = 0 }, "scale_reduction must be positive"},
		{"zero count", func(c *Config) { c.Count = 0 }, "count must be at least 1"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, "workers cannot be negative"},
		{"missing name", func(c *Config) { c.Name = "" }, "name must be set"},
		{"format without output", func(c *Config) { c.Format, c.Output = "json", "" }, "format requires an output path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected an error, got nil")
			}
			if err.Error() != tt.wantErr {
				t.Fatalf("unexpected error: got %q want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateRejectsUnknownFormatAndLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "gif"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown format to fail")
	}

	cfg = DefaultConfig()
	cfg.LogLevel = "loud"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown log level to fail")
	}
}

func TestExportFormat(t *testing.T) {
	cfg := DefaultConfig()
	if f, err := cfg.ExportFormat(); err != nil || f != export.FormatPNG {
		t.Fatalf("ExportFormat() = %q, %v; want png", f, err)
	}
	cfg.Format = "json"
	if f, err := cfg.ExportFormat(); err != nil || f != export.FormatJSON {
		t.Fatalf("ExportFormat() = %q, %v; want json", f, err)
	}
	cfg.Format, cfg.Output = "", ""
	if f, err := cfg.ExportFormat(); err != nil || f != "" {
		t.Fatalf("ExportFormat() = %q, %v; want empty", f, err)
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	level, err := cfg.SlogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Fatalf("SlogLevel() = %v, %v; want debug", level, err)
	}
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	opts := cfg.Options()
	if opts.SampleSize != 32 || opts.Scale != 1 || opts.ScaleReduction != 2 {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestCatalogPath(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.CatalogPath(); got != filepath.Join("data", "catalog.db") {
		t.Fatalf("CatalogPath() = %q", got)
	}
	cfg.Catalog = "/tmp/maps.db"
	if got := cfg.CatalogPath(); got != "/tmp/maps.db" {
		t.Fatalf("CatalogPath() = %q", got)
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := DefaultConfig()
	cfg.Width = 128
	cfg.Seed = 77
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("loaded configuration mismatch:\nwant: %#v\n got: %#v", cfg, got)
	}
}

func TestLoadYAMLKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alps.yaml")
	doc := "width: 256\nheight: 128\nsample_size: 16\nscale: 3.5\nseed: 12\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := DefaultConfig()
	want.Width, want.Height, want.SampleSize, want.Scale, want.Seed = 256, 128, 16, 3.5, 12
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("loaded configuration mismatch:\nwant: %#v\n got: %#v", want, got)
	}
}

func TestLoadInvalidConfiguration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	if err := os.WriteFile(path, []byte("width: 0\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatalf("expected load to fail")
	}
	if !strings.Contains(err.Error(), "validate config: width and height must be positive") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected missing file to fail")
	}
}

func TestMergeKeepsExplicitFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 50
	cfg.Seed = 3

	fromFile := DefaultConfig()
	fromFile.Width = 900
	fromFile.Height = 700
	fromFile.Seed = 1000

	Merge(cfg, fromFile, map[string]bool{"width": true})

	if cfg.Width != 50 {
		t.Errorf("explicit width overwritten: %d", cfg.Width)
	}
	if cfg.Height != 700 || cfg.Seed != 1000 {
		t.Errorf("file values not applied: height=%d seed=%d", cfg.Height, cfg.Seed)
	}
}

func TestIsRemote(t *testing.T) {
	tests := map[string]bool{
		"presets/alps.yaml":                            false,
		"/etc/heightmap.json":                          false,
		"https://example.com/alps.yaml":                true,
		"git::https://example.com/p.git//alps.yaml":    true,
		"s3::https://s3.amazonaws.com/bucket/alps.yml": true,
	}
	for src, want := range tests {
		if got := IsRemote(src); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", src, got, want)
		}
	}
}

func TestFetchLocalFile(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "preset.yaml")
	if err := os.WriteFile(src, []byte("width: 64\nheight: 64\nsample_size: 4\n"), 0o600); err != nil {
		t.Fatalf("write preset: %v", err)
	}

	dst, err := Fetch(context.Background(), src, filepath.Join(t.TempDir(), "fetched"))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if filepath.Base(dst) != "preset.yaml" {
		t.Fatalf("unexpected destination %q", dst)
	}

	cfg, err := Load(dst)
	if err != nil {
		t.Fatalf("load fetched config: %v", err)
	}
	if cfg.Width != 64 || cfg.SampleSize != 4 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
