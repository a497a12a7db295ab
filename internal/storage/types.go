package storage

import (
	"time"

	"github.com/OCharnyshevich/heightmap/internal/export"
	"github.com/OCharnyshevich/heightmap/pkg/diamondsquare"
)

// MapData is the serializable representation of a generated map.
type MapData struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	export.Document
}

// MapDataFromHeightmap captures hm together with the settings that produced it.
func MapDataFromHeightmap(name string, hm *diamondsquare.Heightmap, meta export.Metadata) *MapData {
	lo, hi := export.Bounds(hm)
	return &MapData{
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Document: export.Document{
			Metadata: meta,
			Width:    hm.Width,
			Height:   hm.Height,
			Min:      lo,
			Max:      hi,
			Values:   hm.Values,
		},
	}
}

// Heightmap returns the stored map. Values are shared, not copied.
func (md *MapData) Heightmap() *diamondsquare.Heightmap {
	return &diamondsquare.Heightmap{Width: md.Width, Height: md.Height, Values: md.Values}
}

// Entry returns the catalog row describing md stored at path.
func (md *MapData) Entry(path string) Entry {
	return Entry{
		Name:           md.Name,
		Width:          md.Width,
		Height:         md.Height,
		SampleSize:     md.SampleSize,
		Scale:          md.Scale,
		ScaleReduction: md.ScaleReduction,
		Seed:           md.Seed,
		Entropy:        md.Entropy,
		Min:            md.Min,
		Max:            md.Max,
		Path:           path,
		CreatedAt:      md.CreatedAt,
	}
}
