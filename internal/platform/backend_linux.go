//go:build linux

package platform

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/snapzone/internal/movesize"
	"github.com/1broseidon/snapzone/internal/settings"
	"github.com/1broseidon/snapzone/internal/workarea"
	"github.com/1broseidon/snapzone/internal/x11"
	"github.com/1broseidon/snapzone/internal/zone"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend adapts an X11 server to the collaborator interfaces of the
// work-area registry, the grid work areas and the drag session.
type LinuxBackend struct {
	server  Server
	history *workarea.History
	procs   ProcessInfo
	logger  *slog.Logger

	mu       sync.RWMutex
	monitors []x11.Monitor
}

var (
	_ workarea.MonitorLocator  = (*LinuxBackend)(nil)
	_ workarea.WindowMover     = (*LinuxBackend)(nil)
	_ workarea.AppIdentifier   = (*LinuxBackend)(nil)
	_ movesize.WindowInspector = (*LinuxBackend)(nil)
	_ movesize.Transparency    = (*LinuxBackend)(nil)
	_ movesize.SizeRestorer    = (*LinuxBackend)(nil)
)

// NewLinuxBackend creates a backend over server. history may be set later
// with SetHistory; procs may be nil, in which case no window is considered
// elevated.
func NewLinuxBackend(server Server, procs ProcessInfo, logger *slog.Logger) *LinuxBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinuxBackend{server: server, procs: procs, logger: logger}
}

// NewLinuxBackendFromDisplay opens a fresh X11 connection to display.
func NewLinuxBackendFromDisplay(display string, logger *slog.Logger) (*LinuxBackend, *x11.Connection, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	b := NewLinuxBackend(conn, nil, logger)
	if procs, err := NewProcessInfo(); err != nil {
		// Elevation checks degrade to "not elevated".
		b.logger.Warn("process info unavailable", "error", err)
	} else {
		b.procs = procs
	}
	return b, conn, nil
}

// SetHistory attaches the zone history used to restore window sizes.
func (b *LinuxBackend) SetHistory(h *workarea.History) {
	b.history = h
}

// RefreshMonitors reloads the monitor layout and returns it.
func (b *LinuxBackend) RefreshMonitors() ([]x11.Monitor, error) {
	monitors, err := b.server.Monitors()
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.monitors = monitors
	b.mu.Unlock()
	return monitors, nil
}

// Monitors returns the monitors of the last refresh.
func (b *LinuxBackend) Monitors() []x11.Monitor {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]x11.Monitor, len(b.monitors))
	copy(out, b.monitors)
	return out
}

// Desktops returns the virtual desktops.
func (b *LinuxBackend) Desktops() ([]x11.Desktop, error) {
	return b.server.Desktops()
}

// CurrentDesktop returns the active virtual desktop. Failures fall back to
// the first desktop.
func (b *LinuxBackend) CurrentDesktop(desktops []x11.Desktop) (x11.Desktop, bool) {
	if len(desktops) == 0 {
		return x11.Desktop{}, false
	}
	index, err := b.server.GetCurrentDesktop()
	if err != nil || index < 0 || index >= len(desktops) {
		return desktops[0], true
	}
	return desktops[index], true
}

// Pointer returns the pointer position and key/button mask.
func (b *LinuxBackend) Pointer() (x11.PointerState, error) {
	return b.server.QueryPointer()
}

// ActiveWindow returns the focused window, or 0 when there is none.
func (b *LinuxBackend) ActiveWindow() zone.WindowID {
	w, err := b.server.GetActiveWindow()
	if err != nil {
		return 0
	}
	return zone.WindowID(w)
}

// CursorPosition implements workarea.MonitorLocator.
func (b *LinuxBackend) CursorPosition() (zone.Point, error) {
	p, err := b.server.QueryPointer()
	if err != nil {
		return zone.Point{}, err
	}
	return p.Position, nil
}

// MonitorFromPoint implements workarea.MonitorLocator.
func (b *LinuxBackend) MonitorFromPoint(pt zone.Point) (zone.MonitorID, bool) {
	m, ok := x11.MonitorAt(b.Monitors(), pt)
	return m.ID, ok
}

// MonitorFromWindow implements workarea.MonitorLocator and
// movesize.WindowInspector.
func (b *LinuxBackend) MonitorFromWindow(window zone.WindowID) (zone.MonitorID, bool) {
	r, err := b.server.WindowRect(xproto.Window(window))
	if err != nil {
		return 0, false
	}
	m, ok := x11.MonitorForRect(b.Monitors(), r)
	return m.ID, ok
}

// WindowRect implements workarea.WindowMover.
func (b *LinuxBackend) WindowRect(window zone.WindowID) (zone.Rect, error) {
	return b.server.WindowRect(xproto.Window(window))
}

// MoveWindow implements workarea.WindowMover.
func (b *LinuxBackend) MoveWindow(window zone.WindowID, r zone.Rect) error {
	return b.server.MoveResizeWindow(xproto.Window(window), r)
}

// AppID implements workarea.AppIdentifier using WM_CLASS.
func (b *LinuxBackend) AppID(window zone.WindowID) string {
	instance, class := b.server.WindowClass(xproto.Window(window))
	if class != "" {
		return class
	}
	return instance
}

// ClientWindows returns the managed top-level windows.
func (b *LinuxBackend) ClientWindows() ([]zone.WindowID, error) {
	windows, err := b.server.ClientList()
	if err != nil {
		return nil, err
	}
	out := make([]zone.WindowID, len(windows))
	for i, w := range windows {
		out[i] = zone.WindowID(w)
	}
	return out, nil
}

// IsCandidate implements movesize.WindowInspector. Only normal top-level
// windows whose WM_CLASS and title match no excluded pattern are zoned.
func (b *LinuxBackend) IsCandidate(window zone.WindowID, excludedApps []string) bool {
	if window == 0 {
		return false
	}
	xw := xproto.Window(window)
	if !b.server.IsNormalWindow(xw) {
		return false
	}
	instance, class := b.server.WindowClass(xw)
	if settings.MatchesExcluded(excludedApps, instance, class, b.server.WindowTitle(xw)) {
		b.logger.Debug("window excluded", "window_id", window, "class", class)
		return false
	}
	return true
}

// Traits implements movesize.WindowInspector.
func (b *LinuxBackend) Traits(window zone.WindowID) movesize.Traits {
	xw := xproto.Window(window)
	return movesize.Traits{
		HasNoVisibleOwner: !b.server.HasVisibleOwner(xw),
		IsStandard:        b.server.IsNormalWindow(xw),
	}
}

// IsMaximized implements movesize.WindowInspector.
func (b *LinuxBackend) IsMaximized(window zone.WindowID) bool {
	return b.server.IsMaximized(xproto.Window(window))
}

// IsResizeCursor implements movesize.WindowInspector.
func (b *LinuxBackend) IsResizeCursor() bool {
	name, err := b.server.CursorName()
	if err != nil {
		return false
	}
	return x11.IsResizeCursorName(name)
}

// IsWindowElevated reports whether the window's process runs as root.
func (b *LinuxBackend) IsWindowElevated(window zone.WindowID) bool {
	if b.procs == nil {
		return false
	}
	pid := b.server.WindowPID(xproto.Window(window))
	if pid <= 0 {
		return false
	}
	uid, err := b.procs.EffectiveUID(pid)
	if err != nil {
		return false
	}
	return uid == 0
}

// IsProcessElevated reports whether the daemon itself runs as root.
func (b *LinuxBackend) IsProcessElevated() bool {
	return b.procs != nil && b.procs.SelfEffectiveUID() == 0
}

// Opacity implements movesize.Transparency.
func (b *LinuxBackend) Opacity(window zone.WindowID) (movesize.Opacity, error) {
	v, ok := b.server.WindowOpacity(xproto.Window(window))
	return movesize.Opacity{Value: v, Set: ok}, nil
}

// SetOpacity implements movesize.Transparency. An unset opacity removes the
// property.
func (b *LinuxBackend) SetOpacity(window zone.WindowID, o movesize.Opacity) error {
	if !o.Set {
		return b.server.ClearWindowOpacity(xproto.Window(window))
	}
	return b.server.SetWindowOpacity(xproto.Window(window), o.Value)
}

// RestoreWindowSize implements movesize.SizeRestorer. The window keeps its
// current top-left corner and gets back the size it had before it was first
// zoned.
func (b *LinuxBackend) RestoreWindowSize(window zone.WindowID) error {
	if b.history == nil {
		return nil
	}
	saved, ok := b.history.SavedSize(window)
	if !ok {
		return nil
	}
	current, err := b.server.WindowRect(xproto.Window(window))
	if err != nil {
		return err
	}
	target := zone.Rect{X: current.X, Y: current.Y, Width: saved.Width, Height: saved.Height}
	if err := b.server.MoveResizeWindow(xproto.Window(window), target); err != nil {
		return fmt.Errorf("failed to restore size of window %d: %w", window, err)
	}
	b.history.ForgetSize(window)
	return nil
}

// ForgetWindowSize implements movesize.SizeRestorer.
func (b *LinuxBackend) ForgetWindowSize(window zone.WindowID) {
	if b.history != nil {
		b.history.ForgetSize(window)
	}
}
