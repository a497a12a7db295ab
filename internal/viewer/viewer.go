// Package viewer shows a heightmap in a window, dark valleys to light peaks.
package viewer

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/OCharnyshevich/heightmap/internal/export"
	"github.com/OCharnyshevich/heightmap/pkg/diamondsquare"
)

const maxWindowEdge = 1024

// Map is the ebiten.Game drawing one heightmap.
type Map struct {
	name   string
	w, h   int
	pixels []byte
	lo, hi float64
	info   bool
}

func newMap(name string, hm *diamondsquare.Heightmap) *Map {
	lo, hi := export.Bounds(hm)
	return &Map{name: name, w: hm.Width, h: hm.Height, pixels: export.Grayscale(hm), lo: lo, hi: hi}
}

// Update handles input: Esc or Q closes, I toggles the info overlay.
func (m *Map) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyI) {
		m.info = !m.info
	}
	return nil
}

// Draw renders the map pixels and the optional overlay.
func (m *Map) Draw(screen *ebiten.Image) {
	screen.WritePixels(m.pixels)
	if m.info {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("%s %dx%d\nmin %.3f max %.3f", m.name, m.w, m.h, m.lo, m.hi))
	}
}

// Layout reports the logical screen size used by Ebiten.
func (m *Map) Layout(_, _ int) (int, int) { return m.w, m.h }

// Show blocks until the window is closed.
func Show(name string, hm *diamondsquare.Heightmap) error {
	m := newMap(name, hm)

	scale := 1
	for m.w*(scale+1) <= maxWindowEdge && m.h*(scale+1) <= maxWindowEdge {
		scale++
	}
	ebiten.SetWindowSize(m.w*scale, m.h*scale)
	ebiten.SetWindowTitle(fmt.Sprintf("heightmap: %s", name))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(m); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}
