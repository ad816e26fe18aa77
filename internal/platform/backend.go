package platform

import (
	"github.com/1broseidon/snapzone/internal/x11"
	"github.com/1broseidon/snapzone/internal/zone"
	"github.com/BurntSushi/xgb/xproto"
)

// Server is the subset of the X11 connection the backend needs.
// *x11.Connection implements it.
type Server interface {
	Monitors() ([]x11.Monitor, error)
	Desktops() ([]x11.Desktop, error)
	GetCurrentDesktop() (int, error)
	QueryPointer() (x11.PointerState, error)
	CursorName() (string, error)
	GetActiveWindow() (xproto.Window, error)
	ClientList() ([]xproto.Window, error)

	WindowRect(windowID xproto.Window) (zone.Rect, error)
	MoveResizeWindow(windowID xproto.Window, r zone.Rect) error
	IsMaximized(windowID xproto.Window) bool
	IsNormalWindow(windowID xproto.Window) bool
	HasVisibleOwner(windowID xproto.Window) bool
	WindowClass(windowID xproto.Window) (instance, class string)
	WindowTitle(windowID xproto.Window) string
	WindowPID(windowID xproto.Window) int

	WindowOpacity(windowID xproto.Window) (uint32, bool)
	SetWindowOpacity(windowID xproto.Window, value uint32) error
	ClearWindowOpacity(windowID xproto.Window) error
}

var _ Server = (*x11.Connection)(nil)

// ProcessInfo reports process credentials.
type ProcessInfo interface {
	// EffectiveUID returns the effective user ID of pid.
	EffectiveUID(pid int) (uint64, error)
	// SelfEffectiveUID returns the effective user ID of this process.
	SelfEffectiveUID() uint64
}
