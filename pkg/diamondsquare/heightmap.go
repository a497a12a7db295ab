package diamondsquare

// Heightmap is a generated elevation field.
// Values are row-major: Values[y*Width+x].
type Heightmap struct {
	Width  int
	Height int
	Values []float64
}

// At returns the elevation at column x, row y.
func (h *Heightmap) At(x, y int) float64 {
	return h.Values[y*h.Width+x]
}

// Rows returns the map as Height slices of Width values. The slices share
// storage with Values.
func (h *Heightmap) Rows() [][]float64 {
	rows := make([][]float64, h.Height)
	for y := range rows {
		rows[y] = h.Values[y*h.Width : (y+1)*h.Width]
	}
	return rows
}
