package overlay

import (
	"github.com/1broseidon/snapzone/internal/workarea"
	"github.com/1broseidon/snapzone/internal/zone"
	"github.com/BurntSushi/xgb/xproto"
)

// Border thickness in pixels
const (
	BorderThickness    = 3
	HighlightThickness = 6
)

// surface creates and places the bars that make up zone borders.
type surface interface {
	create() (xproto.Window, error)
	place(wid xproto.Window, r zone.Rect, color, opacity uint32)
	show(wid xproto.Window)
	hide(wid xproto.Window)
	destroy(wid xproto.Window)
}

// border represents a rectangular border made of 4 thin windows
type border struct {
	bars   [4]xproto.Window
	mapped bool
}

// Zones draws the zones of one work area as borders. Highlighted zones get a
// thicker border in the highlight color.
type Zones struct {
	surface surface
	borders []*border
}

var _ workarea.Overlay = (*Zones)(nil)

// Show implements workarea.Overlay.
func (z *Zones) Show(zones []zone.Rect, highlighted zone.ZoneIndexSet, colors zone.ZoneColors) error {
	if err := z.ensureBorders(len(zones)); err != nil {
		return err
	}

	lit := make(map[int]bool, len(highlighted))
	for _, i := range highlighted {
		lit[i] = true
	}
	opacity := Opacity(colors.Opacity)

	// Highlighted zones are placed last so they stack above their neighbours.
	for pass := 0; pass < 2; pass++ {
		for i, r := range zones {
			if lit[i] != (pass == 1) {
				continue
			}
			color, thickness := colors.Border, BorderThickness
			if lit[i] {
				color, thickness = colors.Highlight, HighlightThickness
			}
			z.showBorder(z.borders[i], r, thickness, color, opacity)
		}
	}
	return nil
}

// Hide implements workarea.Overlay. Windows are kept for the next Show.
func (z *Zones) Hide() {
	for _, b := range z.borders {
		z.hideBorder(b)
	}
}

// Destroy releases all overlay windows.
func (z *Zones) Destroy() {
	for _, b := range z.borders {
		for _, wid := range b.bars {
			z.surface.destroy(wid)
		}
	}
	z.borders = nil
}

func (z *Zones) ensureBorders(count int) error {
	for i := count; i < len(z.borders); i++ {
		z.hideBorder(z.borders[i])
	}
	for len(z.borders) < count {
		b := &border{}
		for i := range b.bars {
			wid, err := z.surface.create()
			if err != nil {
				for _, created := range b.bars[:i] {
					z.surface.destroy(created)
				}
				return err
			}
			b.bars[i] = wid
		}
		z.borders = append(z.borders, b)
	}
	return nil
}

func (z *Zones) showBorder(b *border, r zone.Rect, thickness int, color, opacity uint32) {
	for i, bar := range Bars(r, thickness) {
		z.surface.place(b.bars[i], bar, color, opacity)
		z.surface.show(b.bars[i])
	}
	b.mapped = true
}

func (z *Zones) hideBorder(b *border) {
	if !b.mapped {
		return
	}
	for _, wid := range b.bars {
		z.surface.hide(wid)
	}
	b.mapped = false
}

// Bars splits the border of r into top, bottom, left and right rectangles.
// The side bars fit between the top and bottom bars.
func Bars(r zone.Rect, t int) [4]zone.Rect {
	if t*2 > r.Height {
		t = r.Height / 2
	}
	if t*2 > r.Width {
		t = r.Width / 2
	}
	t = max(t, 1)
	return [4]zone.Rect{
		{X: r.X, Y: r.Y, Width: r.Width, Height: t},
		{X: r.X, Y: r.Y + r.Height - t, Width: r.Width, Height: t},
		{X: r.X, Y: r.Y + t, Width: t, Height: r.Height - 2*t},
		{X: r.X + r.Width - t, Y: r.Y + t, Width: t, Height: r.Height - 2*t},
	}
}

// Opacity converts a 0-100 percentage to a _NET_WM_WINDOW_OPACITY value.
func Opacity(percent int) uint32 {
	percent = min(max(percent, 0), 100)
	return uint32(uint64(0xFFFFFFFF) * uint64(percent) / 100)
}
