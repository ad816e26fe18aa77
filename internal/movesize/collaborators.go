package movesize

import (
	"github.com/1broseidon/snapzone/internal/zone"
	"github.com/google/uuid"
)

// Options is the settings snapshot a drag consults.
type Options struct {
	ExcludedApps                 []string
	ShiftDrag                    bool
	MouseSwitch                  bool
	ShowZonesOnAllMonitors       bool
	MakeDraggedWindowTransparent bool
	RestoreSize                  bool
	ElevatedWarningDisabled      bool
}

// SettingsSource provides the current settings snapshot.
type SettingsSource interface {
	Options() Options
}

// Traits are the owner and style flags of a window.
type Traits struct {
	HasNoVisibleOwner bool
	IsStandard        bool
}

// WindowInspector answers questions about windows and the pointer.
type WindowInspector interface {
	IsCandidate(window zone.WindowID, excludedApps []string) bool
	Traits(window zone.WindowID) Traits
	IsMaximized(window zone.WindowID) bool
	// IsResizeCursor reports whether the pointer shows a resize glyph.
	IsResizeCursor() bool
	IsWindowElevated(window zone.WindowID) bool
	IsProcessElevated() bool
	MonitorFromWindow(window zone.WindowID) (zone.MonitorID, bool)
}

// Opacity is the opacity state of a window. Set is false when the window
// carries no explicit opacity.
type Opacity struct {
	Value uint32
	Set   bool
}

// DraggedOpacity is the 50% opacity applied to a dragged window.
var DraggedOpacity = Opacity{Value: uint32(uint64(0xFFFFFFFF) * 50 / 100), Set: true}

// Transparency reads and writes window opacity.
type Transparency interface {
	Opacity(window zone.WindowID) (Opacity, error)
	SetOpacity(window zone.WindowID, o Opacity) error
}

// SizeRestorer restores the geometry a window had before it was zoned.
type SizeRestorer interface {
	RestoreWindowSize(window zone.WindowID) error
	ForgetWindowSize(window zone.WindowID)
}

// InputHooks arms the modifier and mouse-button tracking used during a drag.
type InputHooks interface {
	EnableMouseHook()
	DisableMouseHook()
	EnableModifierTracking()
	DisableModifierTracking()
	ShiftHeld() bool
	CtrlHeld() bool
}

// Notifier shows a desktop notification.
type Notifier interface {
	Notify(summary, body string) error
}

// ZoneHistory holds the per-application zone memory.
type ZoneHistory interface {
	RemoveAppLastZone(window zone.WindowID, areaID string, setID uuid.UUID) bool
	ClearMultipleZones(window zone.WindowID)
}

// Event names a drag outcome reported to an Observer.
type Event string

const (
	EventStart            Event = "start"
	EventHandoff          Event = "handoff"
	EventDisabled         Event = "disabled"
	EventCommit           Event = "commit"
	EventAbortMaximized   Event = "abort_maximized"
	EventAbortTabMerge    Event = "abort_tab_merge"
	EventElevationBlocked Event = "elevation_blocked"
	EventSizeRestored     Event = "size_restored"
	EventPassThrough      Event = "pass_through"
)

// Observer receives drag events, typically for metrics.
type Observer interface {
	Observe(e Event)
}
