package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xfixes"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	// xfixes reports whether cursor names can be queried.
	xfixes bool
}

// NewConnection connects to display (empty means $DISPLAY) and initializes
// the keybind module and the XFixes extension.
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	// Initialize keybind module (required for global hotkeys)
	keybind.Initialize(xu)

	c := &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}

	// XFixes 4 is the first version with cursor names. Without it the
	// resize-cursor check always answers false.
	if err := xfixes.Init(xu.Conn()); err == nil {
		if _, err := xfixes.QueryVersion(xu.Conn(), 4, 0).Reply(); err == nil {
			c.xfixes = true
		}
	}

	return c, nil
}

// HasCursorNames reports whether the server supports cursor name queries.
func (c *Connection) HasCursorNames() bool {
	return c.xfixes
}

// EventLoop starts the main X11 event loop (blocking)
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit stops a running EventLoop.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
