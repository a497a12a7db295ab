package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/OCharnyshevich/heightmap/internal/config"
)

// Storage handles file-based persistence for the run config and generated maps.
type Storage struct {
	dir string
	log *slog.Logger
}

// New creates a new Storage rooted at dir, creating subdirectories as needed.
func New(dir string, log *slog.Logger) (*Storage, error) {
	dirs := []string{
		dir,
		filepath.Join(dir, "maps"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", d, err)
		}
	}
	return &Storage{dir: dir, log: log}, nil
}

// LoadConfig reads config.json into cfg. If the file does not exist, cfg is unchanged.
func (s *Storage) LoadConfig(cfg *config.Config) error {
	path := filepath.Join(s.dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	s.log.Info("loaded config from file", "path", path)
	return nil
}

// SaveConfig writes cfg to config.json atomically.
func (s *Storage) SaveConfig(cfg *config.Config) error {
	path := filepath.Join(s.dir, "config.json")
	return s.atomicWriteJSON(path, cfg)
}

// MapPath returns where SaveMap stores the map called name.
func (s *Storage) MapPath(name string) string {
	return filepath.Join(s.dir, "maps", name+".json")
}

// LoadMap reads maps/<name>.json, or returns nil if it does not exist.
func (s *Storage) LoadMap(name string) (*MapData, error) {
	data, err := os.ReadFile(s.MapPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read map %s: %w", name, err)
	}

	var md MapData
	if err := json.Unmarshal(data, &md); err != nil {
		return nil, fmt.Errorf("parse map %s: %w", name, err)
	}
	if len(md.Values) != md.Width*md.Height {
		return nil, fmt.Errorf("map %s: %d values for %dx%d", name, len(md.Values), md.Width, md.Height)
	}
	return &md, nil
}

// SaveMap persists md to maps/<name>.json.
func (s *Storage) SaveMap(md *MapData) error {
	if md.Name == "" || filepath.Base(md.Name) != md.Name {
		return fmt.Errorf("invalid map name %q", md.Name)
	}
	if err := s.atomicWriteJSON(s.MapPath(md.Name), md); err != nil {
		return err
	}
	s.log.Debug("saved map", "name", md.Name, "width", md.Width, "height", md.Height)
	return nil
}

// atomicWriteJSON marshals v to JSON and writes it atomically using a temp file + rename.
func (s *Storage) atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
