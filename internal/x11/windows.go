package x11

import (
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/snapzone/internal/zone"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
)

const opacityAtom = "_NET_WM_WINDOW_OPACITY"

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, r zone.Rect) error {
	// Maximized windows ignore geometry requests on most window managers.
	if err := c.unmaximizeWindow(windowID); err != nil {
		return fmt.Errorf("failed to unmaximize window %d: %w", windowID, err)
	}

	// Use EWMH MoveResize for better WM compatibility, then configure the
	// window directly.
	return moveWithFallback(
		func() error {
			return ewmh.MoveresizeWindow(c.XUtil, windowID, r.X, r.Y, r.Width, r.Height)
		},
		func() error {
			mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY | xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
			values := []uint32{uint32(r.X), uint32(r.Y), uint32(r.Width), uint32(r.Height)}
			return xproto.ConfigureWindowChecked(c.XUtil.Conn(), windowID, mask, values).Check()
		},
	)
}

// moveWithFallback runs fallback only when primary fails and reports an
// error only when both do.
func moveWithFallback(primary, fallback func() error) error {
	err := primary()
	if err == nil {
		return nil
	}
	if ferr := fallback(); ferr != nil {
		return fmt.Errorf("failed to move window: %w", errors.Join(err, ferr))
	}
	return nil
}

// unmaximizeWindow removes maximized state from a window. A window without
// _NET_WM_STATE is not maximized.
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return nil
	}
	for _, state := range []string{"_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT"} {
		if !hasType(states, state) {
			continue
		}
		if err := ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state); err != nil {
			return err
		}
	}
	return nil
}

// ClientList returns the top-level windows managed by the window manager.
func (c *Connection) ClientList() ([]xproto.Window, error) {
	windows, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to read client list: %w", err)
	}
	return windows, nil
}

// WindowRect returns the client geometry of a window in root coordinates.
func (c *Connection) WindowRect(windowID xproto.Window) (zone.Rect, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return zone.Rect{}, fmt.Errorf("failed to get geometry of window %d: %w", windowID, err)
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return zone.Rect{}, fmt.Errorf("failed to translate coordinates of window %d: %w", windowID, err)
	}

	return zone.Rect{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// IsMaximized reports whether a window is maximized in both directions.
func (c *Connection) IsMaximized(windowID xproto.Window) bool {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	return hasType(states, "_NET_WM_STATE_MAXIMIZED_HORZ") && hasType(states, "_NET_WM_STATE_MAXIMIZED_VERT")
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}
	return IsNormalType(types)
}

// IsNormalType classifies a _NET_WM_WINDOW_TYPE list. Windows that set no
// type are treated as normal.
func IsNormalType(types []string) bool {
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION",
			"_NET_WM_WINDOW_TYPE_TOOLBAR",
			"_NET_WM_WINDOW_TYPE_MENU",
			"_NET_WM_WINDOW_TYPE_UTILITY",
			"_NET_WM_WINDOW_TYPE_DIALOG",
			"_NET_WM_WINDOW_TYPE_TOOLTIP":
			return false
		}
	}
	return len(types) == 0
}

// HasVisibleOwner reports whether a window is transient for another window
// that is currently mapped.
func (c *Connection) HasVisibleOwner(windowID xproto.Window) bool {
	owner, err := icccm.WmTransientForGet(c.XUtil, windowID)
	if err != nil || owner == 0 || owner == c.Root {
		return false
	}
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), owner).Reply()
	if err != nil {
		return false
	}
	return attrs.MapState == xproto.MapStateViewable
}

// WindowClass returns the WM_CLASS instance and class names.
func (c *Connection) WindowClass(windowID xproto.Window) (instance, class string) {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return "", ""
	}
	return strings.TrimSpace(wmClass.Instance), strings.TrimSpace(wmClass.Class)
}

// WindowTitle returns the EWMH title, falling back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	if title, err := ewmh.WmNameGet(c.XUtil, windowID); err == nil && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	if title, err := icccm.WmNameGet(c.XUtil, windowID); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

// WindowPID returns _NET_WM_PID, or 0 when the client does not set it.
func (c *Connection) WindowPID(windowID xproto.Window) int {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0
	}
	return int(pid)
}

// WindowOpacity returns _NET_WM_WINDOW_OPACITY. ok is false when the
// property is not set.
func (c *Connection) WindowOpacity(windowID xproto.Window) (value uint32, ok bool) {
	v, err := xprop.PropValNum(xprop.GetProperty(c.XUtil, windowID, opacityAtom))
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

// SetWindowOpacity sets _NET_WM_WINDOW_OPACITY for compositing managers.
func (c *Connection) SetWindowOpacity(windowID xproto.Window, value uint32) error {
	if err := xprop.ChangeProp32(c.XUtil, windowID, opacityAtom, "CARDINAL", uint(value)); err != nil {
		return fmt.Errorf("failed to set opacity of window %d: %w", windowID, err)
	}
	return nil
}

// ClearWindowOpacity removes _NET_WM_WINDOW_OPACITY, making the window opaque.
func (c *Connection) ClearWindowOpacity(windowID xproto.Window) error {
	atom, err := xprop.Atm(c.XUtil, opacityAtom)
	if err != nil {
		return fmt.Errorf("failed to intern %s: %w", opacityAtom, err)
	}
	if err := xproto.DeletePropertyChecked(c.XUtil.Conn(), windowID, atom).Check(); err != nil {
		return fmt.Errorf("failed to clear opacity of window %d: %w", windowID, err)
	}
	return nil
}

func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
