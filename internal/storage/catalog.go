package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by Get when no map has the requested name.
var ErrNotFound = errors.New("map not found")

const schema = `
CREATE TABLE IF NOT EXISTS maps(
id INTEGER PRIMARY KEY AUTOINCREMENT,
name TEXT NOT NULL UNIQUE,
width INTEGER NOT NULL,
height INTEGER NOT NULL,
sample_size INTEGER NOT NULL,
scale REAL NOT NULL,
scale_reduction REAL NOT NULL,
seed INTEGER NOT NULL,
entropy BOOLEAN NOT NULL DEFAULT 0,
min_height REAL NOT NULL,
max_height REAL NOT NULL,
path TEXT NOT NULL,
created_at DATETIME NOT NULL);`

// Entry is one catalogued map.
type Entry struct {
	ID             int64     `db:"id"`
	Name           string    `db:"name"`
	Width          int       `db:"width"`
	Height         int       `db:"height"`
	SampleSize     int       `db:"sample_size"`
	Scale          float64   `db:"scale"`
	ScaleReduction float64   `db:"scale_reduction"`
	Seed           int64     `db:"seed"`
	Entropy        bool      `db:"entropy"`
	Min            float64   `db:"min_height"`
	Max            float64   `db:"max_height"`
	Path           string    `db:"path"`
	CreatedAt      time.Time `db:"created_at"`
}

// Catalog indexes generated maps in a SQLite database.
type Catalog struct {
	db *sqlx.DB
}

// OpenCatalog opens (or creates) the catalog at path.
func OpenCatalog(ctx context.Context, path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	// One writer at a time; batch runs share the handle.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create catalog schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close releases the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Add inserts e, replacing any entry with the same name, and returns its id.
func (c *Catalog) Add(ctx context.Context, e Entry) (int64, error) {
	_, err := c.db.NamedExecContext(ctx, `
INSERT INTO maps(name, width, height, sample_size, scale, scale_reduction, seed, entropy, min_height, max_height, path, created_at)
VALUES(:name, :width, :height, :sample_size, :scale, :scale_reduction, :seed, :entropy, :min_height, :max_height, :path, :created_at)
ON CONFLICT(name) DO UPDATE SET
width = excluded.width, height = excluded.height, sample_size = excluded.sample_size,
scale = excluded.scale, scale_reduction = excluded.scale_reduction, seed = excluded.seed, entropy = excluded.entropy,
min_height = excluded.min_height, max_height = excluded.max_height,
path = excluded.path, created_at = excluded.created_at`, e)
	if err != nil {
		return 0, fmt.Errorf("add map %s: %w", e.Name, err)
	}

	var id int64
	if err := c.db.GetContext(ctx, &id, "SELECT id FROM maps WHERE name = ?", e.Name); err != nil {
		return 0, fmt.Errorf("add map %s: %w", e.Name, err)
	}
	return id, nil
}

// Get returns the entry called name or ErrNotFound.
func (c *Catalog) Get(ctx context.Context, name string) (*Entry, error) {
	var e Entry
	err := c.db.GetContext(ctx, &e, "SELECT * FROM maps WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get map %s: %w", name, err)
	}
	return &e, nil
}

// List returns every entry in insertion order.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := c.db.SelectContext(ctx, &entries, "SELECT * FROM maps ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	return entries, nil
}
