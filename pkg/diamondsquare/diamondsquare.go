// Package diamondsquare generates fractal heightmaps with the diamond-square
// midpoint displacement algorithm.
//
// The grid is padded to the next power of two (plus one) on each axis, seeded
// on a coarse lattice, refined with alternating square and diamond steps at
// halving spacing, and finally cropped back to the requested size.
package diamondsquare

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidDimension is returned for non-positive or oversized map dimensions.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrInvalidParameter is returned for unusable Options or a nil Source.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Options controls the shape of the generated terrain.
type Options struct {
	// SampleSize is half the spacing of the initial random lattice. Must be a power of two.
	SampleSize int
	// Scale is the displacement amplitude of the lattice and of the first pass.
	Scale float64
	// ScaleReduction divides the amplitude after every pass.
	ScaleReduction float64
	// Observer, if set, is called before each refinement pass.
	Observer func(Pass)
}

// DefaultOptions returns sample size 2, scale 1 and reduction 2.
func DefaultOptions() Options {
	return Options{SampleSize: 2, Scale: 1.0, ScaleReduction: 2.0}
}

// Pass describes one square+diamond refinement pass.
type Pass struct {
	Index     int
	Step      int
	Amplitude float64
}

func (o Options) validate() error {
	if o.SampleSize <= 0 {
		return fmt.Errorf("%w: sample size %d must be positive", ErrInvalidParameter, o.SampleSize)
	}
	if math.IsNaN(o.Scale) || math.IsInf(o.Scale, 0) {
		return fmt.Errorf("%w: scale %v must be finite", ErrInvalidParameter, o.Scale)
	}
	if !(o.ScaleReduction > 0) || math.IsInf(o.ScaleReduction, 0) {
		return fmt.Errorf("%w: scale reduction %v must be positive and finite", ErrInvalidParameter, o.ScaleReduction)
	}
	return nil
}

// Schedule lists the refinement passes Generate performs for opts.
// It returns nil for invalid options.
func Schedule(opts Options) []Pass {
	if opts.validate() != nil {
		return nil
	}
	var passes []Pass
	amplitude := opts.Scale
	for step := 2 * opts.SampleSize; step > 1; step /= 2 {
		passes = append(passes, Pass{Index: len(passes), Step: step, Amplitude: amplitude})
		amplitude /= opts.ScaleReduction
	}
	return passes
}

// Generate builds a width×height heightmap. src provides every random draw;
// its errors are returned as-is (wrapped) and no partial map is produced.
func Generate(width, height int, opts Options, src Source) (*Heightmap, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidParameter)
	}
	w, h, err := GridSize(width, height, opts.SampleSize)
	if err != nil {
		return nil, err
	}

	g := newGrid(w, h)
	step := 2 * opts.SampleSize
	if err := g.seed(step, opts.Scale, src); err != nil {
		return nil, err
	}

	for _, pass := range Schedule(opts) {
		if opts.Observer != nil {
			opts.Observer(pass)
		}
		if err := g.refine(pass.Step, pass.Amplitude, src); err != nil {
			return nil, fmt.Errorf("pass %d (step %d): %w", pass.Index, pass.Step, err)
		}
	}

	return g.crop(width, height), nil
}

// seed fills the coarse lattice, bounds inclusive.
func (g *grid) seed(step int, amplitude float64, src Source) error {
	for y := 0; y <= g.h; y += step {
		for x := 0; x <= g.w; x += step {
			r, err := src.Uniform()
			if err != nil {
				return fmt.Errorf("seed (%d,%d): %w", x, y, err)
			}
			g.set(x, y, r*amplitude)
		}
	}
	return nil
}

// refine runs one square step over every cell followed by one diamond step
// over every cell. The diamond step reads the centres written by the square
// step, so the two loops must not be fused.
func (g *grid) refine(step int, amplitude float64, src Source) error {
	for y := 0; y < g.h; y += step {
		for x := 0; x < g.w; x += step {
			if err := g.square(x, y, step, amplitude, src); err != nil {
				return err
			}
		}
	}
	for y := 0; y < g.h; y += step {
		for x := 0; x < g.w; x += step {
			if err := g.diamond(x, y, step, amplitude, src); err != nil {
				return err
			}
		}
	}
	return nil
}

// square sets the cell centre E from the corners:
//
//	A   B
//	  E
//	C   D
func (g *grid) square(x, y, size int, amplitude float64, src Source) error {
	a := g.at(x, y)
	b := g.at(x+size, y)
	c := g.at(x, y+size)
	d := g.at(x+size, y+size)

	r, err := src.Uniform()
	if err != nil {
		return fmt.Errorf("square (%d,%d): %w", x, y, err)
	}
	hs := size / 2
	g.set(x+hs, y+hs, (a+b+c+d)/4.0+r*amplitude)
	return nil
}

// diamond sets the four edge midpoints of the cell:
//
//	A G B
//	F E H
//	C I D
//
// Each midpoint also averages the centre of the neighbouring cell across
// that edge (f, g, h, i); off-grid neighbours are replaced by E.
func (g *grid) diamond(x, y, size int, amplitude float64, src Source) error {
	hs := size / 2
	a := g.at(x, y)
	b := g.at(x+size, y)
	c := g.at(x, y+size)
	d := g.at(x+size, y+size)
	e := g.at(x+hs, y+hs)

	f := g.outer(x-hs, y+hs, e)
	gg := g.outer(x+hs, y-hs, e)
	h := g.outer(x+size+hs, y+hs, e)
	i := g.outer(x+hs, y+size+hs, e)

	var r [4]float64
	for k := range r {
		v, err := src.Uniform()
		if err != nil {
			return fmt.Errorf("diamond (%d,%d): %w", x, y, err)
		}
		r[k] = v * amplitude
	}

	g.set(x, y+hs, (a+e+c+f)/4.0+r[0])
	g.set(x+hs, y, (a+e+b+gg)/4.0+r[1])
	g.set(x+size, y+hs, (b+e+d+h)/4.0+r[2])
	g.set(x+hs, y+size, (d+e+c+i)/4.0+r[3])
	return nil
}

func (g *grid) outer(x, y int, fallback float64) float64 {
	if !g.inside(x, y) {
		return fallback
	}
	return g.at(x, y)
}

func (g *grid) crop(width, height int) *Heightmap {
	hm := &Heightmap{Width: width, Height: height, Values: make([]float64, width*height)}
	for y := 0; y < height; y++ {
		row := g.cells[y*(g.w+1) : y*(g.w+1)+width]
		copy(hm.Values[y*width:(y+1)*width], row)
	}
	return hm
}
