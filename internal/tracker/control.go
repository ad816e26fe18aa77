package tracker

import (
	"context"
	"fmt"

	"github.com/1broseidon/snapzone/internal/layout"
	"github.com/1broseidon/snapzone/internal/settings"
	"github.com/1broseidon/snapzone/internal/zone"
)

// AreaInfo describes one work area.
type AreaInfo struct {
	ID           string         `json:"id"`
	Desktop      string         `json:"desktop"`
	DesktopIndex int            `json:"desktop_index"`
	Monitor      string         `json:"monitor"`
	MonitorID    zone.MonitorID `json:"monitor_id"`
	Bounds       zone.Rect      `json:"bounds"`
	Layout       layout.Spec    `json:"layout"`
	Zones        []zone.Rect    `json:"zones"`
	Current      bool           `json:"current"`
	desktop      zone.DesktopID
}

// Status is a snapshot of the tracker.
type Status struct {
	Desktop       string        `json:"desktop"`
	Desktops      int           `json:"desktops"`
	Monitors      int           `json:"monitors"`
	WorkAreas     int           `json:"work_areas"`
	Dragging      bool          `json:"dragging"`
	DraggedWindow zone.WindowID `json:"dragged_window,omitempty"`
	DragEnabled   bool          `json:"drag_enabled"`
	ActiveArea    string        `json:"active_area,omitempty"`
}

// PlaceKind selects a keyboard placement operation.
type PlaceKind string

const (
	PlaceMove   PlaceKind = "move"
	PlaceExtend PlaceKind = "extend"
	PlaceZones  PlaceKind = "zones"
)

// PlaceRequest asks for a window to be placed without dragging.
type PlaceRequest struct {
	Kind      PlaceKind
	Direction zone.Direction
	Zones     zone.ZoneIndexSet
	// Window defaults to the active window.
	Window zone.WindowID
}

// Status returns a snapshot of the tracker state.
func (t *Tracker) Status(ctx context.Context) (Status, error) {
	var st Status
	err := t.loop.Do(ctx, func() {
		st = Status{
			Desktop:       t.current.Name,
			Desktops:      len(t.desktops),
			Monitors:      len(t.monitors),
			WorkAreas:     len(t.areas),
			Dragging:      t.session.InDragging(),
			DraggedWindow: t.session.DraggedWindow(),
			DragEnabled:   t.session.DragEnabled(),
		}
		if wa := t.session.ActiveWorkArea(); wa != nil {
			st.ActiveArea = wa.UniqueID()
		}
	})
	return st, err
}

// Areas returns every work area ordered by desktop and monitor.
func (t *Tracker) Areas(ctx context.Context) ([]AreaInfo, error) {
	var out []AreaInfo
	err := t.loop.Do(ctx, func() { out = t.sortedAreas() })
	return out, err
}

// Place runs a keyboard placement on the current desktop. It reports whether
// the window was moved.
func (t *Tracker) Place(ctx context.Context, req PlaceRequest) (bool, error) {
	var (
		placed bool
		perr   error
	)
	err := t.loop.Do(ctx, func() { placed, perr = t.place(req) })
	if err != nil {
		return false, err
	}
	if t.gauges != nil {
		t.gauges.ObservePlacement(string(req.Kind), placed)
	}
	return placed, perr
}

func (t *Tracker) place(req PlaceRequest) (bool, error) {
	window := req.Window
	if window == 0 {
		window = t.backend.ActiveWindow()
	}
	if window == 0 {
		return false, fmt.Errorf("no active window")
	}
	s := t.store.Current()
	if !t.inspector.IsCandidate(window, s.ExcludedApps) {
		return false, nil
	}
	wa := t.registry.WorkAreaForWindow(window, t.current.ID)
	if wa == nil {
		return false, nil
	}

	switch req.Kind {
	case PlaceMove:
		if s.Hotkeys.BasedOnPosition {
			return t.session.MoveWindowIntoZoneByDirectionAndPosition(window, req.Direction, s.Hotkeys.Cycle, wa), nil
		}
		return t.session.MoveWindowIntoZoneByDirectionAndIndex(window, req.Direction, s.Hotkeys.Cycle, wa), nil
	case PlaceExtend:
		return t.session.ExtendWindowByDirectionAndPosition(window, req.Direction, wa), nil
	case PlaceZones:
		zs := wa.ZoneSet()
		if zs == nil {
			return false, nil
		}
		for _, i := range req.Zones {
			if i < 0 || i >= len(zs.Zones()) {
				return false, fmt.Errorf("zone %d out of range (work area has %d zones)", i, len(zs.Zones()))
			}
		}
		if len(req.Zones) == 0 {
			return false, fmt.Errorf("no zones given")
		}
		t.session.MoveWindowIntoZoneByIndexSet(window, req.Zones, wa, false)
		return true, nil
	default:
		return false, fmt.Errorf("unknown placement %q", req.Kind)
	}
}

// ApplySettings installs s, pushes colors and the overlapping algorithm to
// every work area and rebuilds areas whose layout changed.
func (t *Tracker) ApplySettings(ctx context.Context, s *settings.Settings) error {
	return t.loop.Do(ctx, func() { t.applySettings(s) })
}

func (t *Tracker) applySettings(s *settings.Settings) {
	t.store.Set(s)
	t.registry.UpdateZoneColors(s.Colors())
	t.registry.UpdateOverlappingAlgorithm(s.Algorithm())
	t.loop.SetInterval(s.PollInterval())
	if !t.detector.Dragging() {
		t.reconcile()
	}
	t.logger.Info("settings applied", "span", s.SpanZonesAcrossMonitors, "algorithm", s.Algorithm())
}
