package overlay

import (
	"github.com/1broseidon/snapzone/internal/zone"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Manager creates zone overlays as override-redirect windows on one X
// connection.
type Manager struct {
	xu   *xgbutil.XUtil
	root xproto.Window
}

// NewManager creates a new overlay manager
func NewManager(xu *xgbutil.XUtil, root xproto.Window) *Manager {
	return &Manager{xu: xu, root: root}
}

// NewZones returns an empty overlay for one work area.
func (m *Manager) NewZones() *Zones {
	return &Zones{surface: m}
}

// create makes a single override-redirect window that bypasses the window
// manager and ignores input.
func (m *Manager) create() (xproto.Window, error) {
	conn := m.xu.Conn()
	screen := m.xu.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		m.root,
		0, 0, // x, y (will be updated later)
		1, 1, // width, height (will be updated later)
		0, // border_width
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwOverrideRedirect,
		// Value list order follows the bit positions of the mask (low to high).
		[]uint32{0, 1}, // back_pixel=black, override_redirect=true
	).Check()
	if err != nil {
		return 0, err
	}
	return wid, nil
}

// place moves, resizes, and recolors a window
func (m *Manager) place(wid xproto.Window, r zone.Rect, color, opacity uint32) {
	conn := m.xu.Conn()

	width, height := max(r.Width, 1), max(r.Height, 1)
	xproto.ConfigureWindow(
		conn,
		wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(r.X),
			uint32(r.Y),
			uint32(width),
			uint32(height),
			xproto.StackModeAbove, // Keep on top
		},
	)

	xproto.ChangeWindowAttributes(conn, wid, xproto.CwBackPixel, []uint32{color})

	// Compositors read the opacity hint; without one the bars are opaque.
	_ = xprop.ChangeProp32(m.xu, wid, "_NET_WM_WINDOW_OPACITY", "CARDINAL", uint(opacity))

	// Clear window to show new color
	xproto.ClearArea(conn, false, wid, 0, 0, 0, 0)
}

func (m *Manager) show(wid xproto.Window) {
	xproto.MapWindow(m.xu.Conn(), wid)
}

func (m *Manager) hide(wid xproto.Window) {
	xproto.UnmapWindow(m.xu.Conn(), wid)
}

func (m *Manager) destroy(wid xproto.Window) {
	if wid != 0 {
		xproto.DestroyWindow(m.xu.Conn(), wid)
	}
}
