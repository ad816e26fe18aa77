// Package movesize turns window move events into zone placement decisions.
package movesize

import (
	"log/slog"
	"sync/atomic"

	"github.com/1broseidon/snapzone/internal/zone"
)

const (
	elevatedSummary = "Can't drag elevated window"
	elevatedBody    = "snapzone is not running with root privileges and cannot move windows owned by root processes. " +
		"Run the daemon as the same user or disable this warning with elevated_warning_disabled."
)

// elevationWarned latches the one advisory shown per process.
var elevationWarned atomic.Bool

// DragEnabled decides whether a drag snaps into zones. With invertWithShift
// the modifier turns snapping on, otherwise it turns snapping off. The
// secondary toggle flips the outcome either way.
func DragEnabled(invertWithShift, shiftHeld, secondaryToggle bool) bool {
	if invertWithShift {
		return shiftHeld != secondaryToggle
	}
	return shiftHeld == secondaryToggle
}

// Config wires a Session to its collaborators. Transparency, Notifier,
// Observer and OnKeyUpdate are optional.
type Config struct {
	Settings     SettingsSource
	Inspector    WindowInspector
	Transparency Transparency
	Sizes        SizeRestorer
	Hooks        InputHooks
	Notifier     Notifier
	History      ZoneHistory
	Observer     Observer
	Logger       *slog.Logger

	// OnKeyUpdate asks the host to re-run MoveSizeUpdate after a toggle.
	OnKeyUpdate func()
}

type transparencySnapshot struct {
	window  zone.WindowID
	opacity Opacity
}

// Session is the drag state machine. It is not safe for concurrent use;
// every call must come from the goroutine that owns it.
type Session struct {
	settings     SettingsSource
	inspector    WindowInspector
	transparency Transparency
	sizes        SizeRestorer
	hooks        InputHooks
	notifier     Notifier
	history      ZoneHistory
	observer     Observer
	logger       *slog.Logger
	onKeyUpdate  func()

	inDragging      bool
	dragEnabled     bool
	secondaryToggle bool
	dragged         zone.WindowID
	active          zone.WorkArea
	startTraits     Traits
	snapshot        *transparencySnapshot
	// elevationBlocked is set once the current drag was refused for elevation.
	elevationBlocked bool
}

// New creates an idle session.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		settings:     cfg.Settings,
		inspector:    cfg.Inspector,
		transparency: cfg.Transparency,
		sizes:        cfg.Sizes,
		hooks:        cfg.Hooks,
		notifier:     cfg.Notifier,
		history:      cfg.History,
		observer:     cfg.Observer,
		logger:       logger,
		onKeyUpdate:  cfg.OnKeyUpdate,
	}
}

// InDragging reports whether a drag is in progress.
func (s *Session) InDragging() bool { return s.inDragging }

// DragEnabled reports whether the current drag snaps into zones.
func (s *Session) DragEnabled() bool { return s.dragEnabled }

// DraggedWindow returns the window being dragged, or 0 when idle.
func (s *Session) DraggedWindow() zone.WindowID { return s.dragged }

// ActiveWorkArea returns the work area that owns the placement decision.
func (s *Session) ActiveWorkArea() zone.WorkArea { return s.active }

// SecondaryToggle reports the click-based toggle state.
func (s *Session) SecondaryToggle() bool { return s.secondaryToggle }

// SecondaryClick flips the click-based toggle while a drag is in progress.
func (s *Session) SecondaryClick() {
	if !s.inDragging {
		return
	}
	s.secondaryToggle = !s.secondaryToggle
	s.logger.Debug("secondary toggle", "state", s.secondaryToggle)
	if s.onKeyUpdate != nil {
		s.onKeyUpdate()
	}
}

// MoveSizeStart begins a drag of window on monitor.
func (s *Session) MoveSizeStart(window zone.WindowID, monitor zone.MonitorID, pt zone.Point, workAreas map[zone.MonitorID]zone.WorkArea) {
	if s.inDragging && window != s.dragged {
		s.logger.Debug("ignoring drag start while another window is dragged", "window_id", window, "dragged", s.dragged)
		return
	}

	opts := s.settings.Options()
	if !s.inspector.IsCandidate(window, opts.ExcludedApps) || s.inspector.IsResizeCursor() {
		return
	}

	s.startTraits = s.inspector.Traits(window)
	s.inDragging = true
	s.dragged = window

	if opts.MouseSwitch {
		s.hooks.EnableMouseHook()
	}
	s.hooks.EnableModifierTracking()

	s.updateDragState(opts)
	s.warnIfElevationIsRequired(window, opts)

	if s.dragEnabled {
		wa, ok := workAreas[monitor]
		if !ok || wa == nil {
			s.logger.Debug("no work area for monitor", "window_id", window, "monitor", monitor)
			s.emit(EventPassThrough)
		} else {
			s.active = wa
			s.setTransparency(window, opts)
			wa.MoveSizeEnter(window)
			if opts.ShowZonesOnAllMonitors {
				for _, other := range workAreas {
					if other != nil && other != wa {
						other.ShowZoneWindow()
					}
				}
			}
			s.emit(EventStart)
		}
	} else if s.active != nil {
		s.resetTransparency()
		s.active = nil
		hideAll(workAreas)
	}

	if wa, ok := workAreas[monitor]; ok && wa != nil {
		if zs := wa.ZoneSet(); zs != nil {
			zs.DismissWindow(window)
		}
	}
}

// MoveSizeUpdate follows the pointer during a drag.
func (s *Session) MoveSizeUpdate(monitor zone.MonitorID, pt zone.Point, workAreas map[zone.MonitorID]zone.WorkArea) {
	if !s.inDragging {
		return
	}

	// A toggle pressed mid-drag restarts the drag once and then updates it.
	for restarted := false; ; restarted = true {
		opts := s.settings.Options()
		s.updateDragState(opts)

		if s.active != nil {
			s.updateActive(monitor, pt, workAreas, opts)
			return
		}
		if !s.dragEnabled || restarted {
			return
		}

		s.MoveSizeStart(s.dragged, monitor, pt, workAreas)
		if !s.dragEnabled || !s.inDragging {
			return
		}
	}
}

func (s *Session) updateActive(monitor zone.MonitorID, pt zone.Point, workAreas map[zone.MonitorID]zone.WorkArea, opts Options) {
	if !s.dragEnabled {
		s.active = nil
		s.resetTransparency()
		hideAll(workAreas)
		s.emit(EventDisabled)
		return
	}

	wa, ok := workAreas[monitor]
	if !ok || wa == nil {
		return
	}
	if wa != s.active {
		s.active.ClearSelectedZones()
		if !opts.ShowZonesOnAllMonitors {
			s.active.HideZoneWindow()
		}
		s.active = wa
		wa.MoveSizeEnter(s.dragged)
		s.logger.Debug("drag moved to another monitor", "window_id", s.dragged, "monitor", monitor)
		s.emit(EventHandoff)
	}

	selectMany := s.hooks.CtrlHeld()
	for _, area := range workAreas {
		if area != nil {
			area.MoveSizeUpdate(pt, s.dragEnabled, selectMany)
		}
	}
}

// MoveSizeEnd finishes the drag of window at pt.
func (s *Session) MoveSizeEnd(window zone.WindowID, pt zone.Point, workAreas map[zone.MonitorID]zone.WorkArea) {
	if !s.inDragging || window != s.dragged {
		return
	}

	s.hooks.DisableMouseHook()
	s.hooks.DisableModifierTracking()

	if s.active != nil {
		wa := s.active
		s.active = nil
		s.resetTransparency()

		traits := s.inspector.Traits(window)
		tabMerge := !traits.IsStandard && traits.HasNoVisibleOwner &&
			s.startTraits.IsStandard && s.startTraits.HasNoVisibleOwner
		maximized := s.inspector.IsMaximized(window)

		switch {
		case tabMerge:
			s.logger.Debug("placement aborted: window merged into another", "window_id", window)
			s.emit(EventAbortTabMerge)
		case maximized:
			s.logger.Debug("placement aborted: window maximized on drop", "window_id", window)
			s.emit(EventAbortMaximized)
		default:
			wa.MoveSizeEnd(window, pt)
			s.emit(EventCommit)
		}
	} else {
		s.endUnzoned(window, workAreas)
	}

	s.inDragging = false
	s.dragEnabled = false
	s.secondaryToggle = false
	s.dragged = 0
	s.startTraits = Traits{}
	s.elevationBlocked = false

	hideAll(workAreas)
}

// endUnzoned handles the drop of a window that was moved without zoning.
func (s *Session) endUnzoned(window zone.WindowID, workAreas map[zone.MonitorID]zone.WorkArea) {
	opts := s.settings.Options()
	if opts.RestoreSize {
		if s.inspector.IsResizeCursor() {
			s.sizes.ForgetWindowSize(window)
		} else if !s.inspector.IsMaximized(window) {
			if err := s.sizes.RestoreWindowSize(window); err != nil {
				s.logger.Warn("failed to restore window size", "window_id", window, "error", err)
			} else {
				s.emit(EventSizeRestored)
			}
		}
	}

	if monitor, ok := s.inspector.MonitorFromWindow(window); ok {
		if wa, ok := workAreas[monitor]; ok && wa != nil {
			if zs := wa.ZoneSet(); zs != nil {
				s.history.RemoveAppLastZone(window, wa.UniqueID(), zs.ID())
			}
		}
	}
	s.history.ClearMultipleZones(window)
}

// MoveWindowIntoZoneByIndexSet places window unless it is being dragged.
func (s *Session) MoveWindowIntoZoneByIndexSet(window zone.WindowID, set zone.ZoneIndexSet, wa zone.WorkArea, suppressMove bool) {
	if wa == nil || (s.inDragging && window == s.dragged) {
		return
	}
	wa.MoveWindowIntoZoneByIndexSet(window, set, suppressMove)
}

func (s *Session) MoveWindowIntoZoneByDirectionAndIndex(window zone.WindowID, dir zone.Direction, cycle bool, wa zone.WorkArea) bool {
	return wa != nil && wa.MoveWindowIntoZoneByDirectionAndIndex(window, dir, cycle)
}

func (s *Session) MoveWindowIntoZoneByDirectionAndPosition(window zone.WindowID, dir zone.Direction, cycle bool, wa zone.WorkArea) bool {
	return wa != nil && wa.MoveWindowIntoZoneByDirectionAndPosition(window, dir, cycle)
}

func (s *Session) ExtendWindowByDirectionAndPosition(window zone.WindowID, dir zone.Direction, wa zone.WorkArea) bool {
	return wa != nil && wa.ExtendWindowByDirectionAndPosition(window, dir)
}

func (s *Session) updateDragState(opts Options) {
	s.dragEnabled = DragEnabled(opts.ShiftDrag, s.hooks.ShiftHeld(), s.secondaryToggle)
}

// warnIfElevationIsRequired blocks zoning of windows owned by a more
// privileged process and shows the advisory once per process.
func (s *Session) warnIfElevationIsRequired(window zone.WindowID, opts Options) {
	if s.inspector.IsProcessElevated() || !s.inspector.IsWindowElevated(window) {
		return
	}
	s.dragEnabled = false
	if s.elevationBlocked {
		return
	}
	s.elevationBlocked = true
	s.emit(EventElevationBlocked)

	if opts.ElevatedWarningDisabled || s.notifier == nil {
		return
	}
	if !elevationWarned.CompareAndSwap(false, true) {
		return
	}
	if err := s.notifier.Notify(elevatedSummary, elevatedBody); err != nil {
		s.logger.Warn("failed to show elevation warning", "error", err)
	}
}

func (s *Session) setTransparency(window zone.WindowID, opts Options) {
	if !opts.MakeDraggedWindowTransparent || s.transparency == nil {
		return
	}
	prev, err := s.transparency.Opacity(window)
	if err != nil {
		s.logger.Debug("failed to read window opacity", "window_id", window, "error", err)
		return
	}
	s.snapshot = &transparencySnapshot{window: window, opacity: prev}
	if err := s.transparency.SetOpacity(window, DraggedOpacity); err != nil {
		s.logger.Debug("failed to set window opacity", "window_id", window, "error", err)
	}
}

func (s *Session) resetTransparency() {
	if s.snapshot == nil || s.transparency == nil {
		return
	}
	snap := s.snapshot
	s.snapshot = nil
	if err := s.transparency.SetOpacity(snap.window, snap.opacity); err != nil {
		s.logger.Debug("failed to restore window opacity", "window_id", snap.window, "error", err)
	}
}

func (s *Session) emit(e Event) {
	if s.observer != nil {
		s.observer.Observe(e)
	}
}

func hideAll(workAreas map[zone.MonitorID]zone.WorkArea) {
	for _, wa := range workAreas {
		if wa != nil {
			wa.HideZoneWindow()
		}
	}
}
