package diamondsquare

import "fmt"

// Limits on the padded grid: MaxGridSize per edge, MaxGridCells in total
// (1 GiB of float64 samples).
const (
	MaxGridSize  = 1 << 16
	MaxGridCells = 1 << 27
)

// grid holds (w+1)×(h+1) samples. Index = y*(w+1) + x.
type grid struct {
	w, h  int
	cells []float64
}

func newGrid(w, h int) *grid {
	return &grid{w: w, h: h, cells: make([]float64, (w+1)*(h+1))}
}

func (g *grid) at(x, y int) float64 {
	return g.cells[y*(g.w+1)+x]
}

func (g *grid) set(x, y int, v float64) {
	g.cells[y*(g.w+1)+x] = v
}

// inside reports whether (x, y) addresses a cell of the grid.
func (g *grid) inside(x, y int) bool {
	return x >= 0 && x <= g.w && y >= 0 && y <= g.h
}

// nextPow2 returns the smallest power of two >= n, or 1 for n <= 1.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// GridSize returns the padded edge lengths W and H used to generate a
// width×height map. The grid itself holds (W+1)×(H+1) samples.
func GridSize(width, height, sampleSize int) (w, h int, err error) {
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d must be positive", ErrInvalidDimension, width, height)
	}
	if sampleSize <= 0 {
		return 0, 0, fmt.Errorf("%w: sample size %d must be positive", ErrInvalidParameter, sampleSize)
	}
	if sampleSize&(sampleSize-1) != 0 {
		return 0, 0, fmt.Errorf("%w: sample size %d must be a power of two", ErrInvalidParameter, sampleSize)
	}
	if width > MaxGridSize || height > MaxGridSize || sampleSize > MaxGridSize/2 {
		return 0, 0, fmt.Errorf("%w: %dx%d with sample size %d exceeds grid limit %d",
			ErrInvalidDimension, width, height, sampleSize, MaxGridSize)
	}

	step := 2 * sampleSize
	w = max(nextPow2(width), step)
	h = max(nextPow2(height), step)
	if cells := (w + 1) * (h + 1); cells > MaxGridCells {
		return 0, 0, fmt.Errorf("%w: %dx%d needs %d samples, limit %d",
			ErrInvalidDimension, width, height, cells, MaxGridCells)
	}
	return w, h, nil
}
