package workarea

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/snapzone/internal/layout"
	"github.com/1broseidon/snapzone/internal/zone"
)

// WindowMover reads and changes window geometry.
type WindowMover interface {
	WindowRect(window zone.WindowID) (zone.Rect, error)
	MoveWindow(window zone.WindowID, r zone.Rect) error
}

// Overlay draws the zones of a work area.
type Overlay interface {
	Show(zones []zone.Rect, highlighted zone.ZoneIndexSet, colors zone.ZoneColors) error
	Hide()
}

// GridConfig holds configuration for a grid work area.
type GridConfig struct {
	ID        string
	Bounds    zone.Rect
	Layout    layout.Spec
	Colors    zone.ZoneColors
	Algorithm zone.OverlappingAlgorithm
	Mover     WindowMover
	Overlay   Overlay // optional
	History   *History
	Logger    *slog.Logger
}

// GridArea is a work area whose zones come from a layout template.
type GridArea struct {
	id        string
	bounds    zone.Rect
	spec      layout.Spec
	set       *ZoneSet
	colors    zone.ZoneColors
	algorithm zone.OverlappingAlgorithm
	mover     WindowMover
	overlay   Overlay
	history   *History
	logger    *slog.Logger

	visible     bool
	dragged     zone.WindowID
	highlighted zone.ZoneIndexSet
	anchor      int
}

// NewGridArea computes the zones of cfg.Layout inside cfg.Bounds.
func NewGridArea(cfg GridConfig) (*GridArea, error) {
	if cfg.Mover == nil {
		return nil, fmt.Errorf("grid area %s: mover is required", cfg.ID)
	}
	zones, err := layout.Zones(cfg.Layout, cfg.Bounds)
	if err != nil {
		return nil, fmt.Errorf("grid area %s: %w", cfg.ID, err)
	}

	history := cfg.History
	if history == nil {
		history = NewHistory(nil)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &GridArea{
		id:        cfg.ID,
		bounds:    cfg.Bounds,
		spec:      cfg.Layout,
		set:       newZoneSet(ZoneSetID(cfg.ID, cfg.Layout), zones),
		colors:    cfg.Colors,
		algorithm: cfg.Algorithm,
		mover:     cfg.Mover,
		overlay:   cfg.Overlay,
		history:   history,
		logger:    logger.With("area", cfg.ID),
		anchor:    -1,
	}, nil
}

// Bounds returns the screen region the area covers.
func (a *GridArea) Bounds() zone.Rect { return a.bounds }

// Layout returns the template the zones were computed from.
func (a *GridArea) Layout() layout.Spec { return a.spec }

// Highlighted returns the zones selected by the current drag.
func (a *GridArea) Highlighted() zone.ZoneIndexSet { return a.highlighted }

// Visible reports whether the zone overlay is shown.
func (a *GridArea) Visible() bool { return a.visible }

func (a *GridArea) UniqueID() string { return a.id }

func (a *GridArea) ZoneSet() zone.ZoneSet {
	if a.set == nil || len(a.set.zones) == 0 {
		return nil
	}
	return a.set
}

func (a *GridArea) MoveSizeEnter(window zone.WindowID) {
	a.dragged = window
	a.highlighted = nil
	a.anchor = -1
	a.ShowZoneWindow()
}

func (a *GridArea) MoveSizeUpdate(pt zone.Point, dragEnabled, selectManyZones bool) {
	prev := a.highlighted
	a.highlighted = a.selection(pt, dragEnabled, selectManyZones)
	if a.visible && !sameSet(prev, a.highlighted) {
		a.redraw()
	}
}

func (a *GridArea) selection(pt zone.Point, dragEnabled, selectManyZones bool) zone.ZoneIndexSet {
	if !dragEnabled {
		a.anchor = -1
		return nil
	}
	zones := a.set.zones
	idx := layout.Pick(zones, pt, a.algorithm)
	if idx < 0 {
		return nil
	}
	if !selectManyZones {
		a.anchor = -1
		return zone.ZoneIndexSet{idx}
	}
	if a.anchor < 0 || a.anchor >= len(zones) {
		a.anchor = idx
	}
	bounds := zones[a.anchor].Union(zones[idx])
	var set zone.ZoneIndexSet
	for i, z := range zones {
		if bounds.Contains(z.Center()) {
			set = append(set, i)
		}
	}
	return set
}

func (a *GridArea) MoveSizeEnd(window zone.WindowID, pt zone.Point) {
	if len(a.highlighted) > 0 {
		a.MoveWindowIntoZoneByIndexSet(window, a.highlighted, false)
	}
	a.dragged = 0
	a.highlighted = nil
	a.anchor = -1
}

func (a *GridArea) ShowZoneWindow() {
	a.visible = true
	a.redraw()
}

func (a *GridArea) HideZoneWindow() {
	a.visible = false
	a.highlighted = nil
	a.anchor = -1
	if a.overlay != nil {
		a.overlay.Hide()
	}
}

func (a *GridArea) ClearSelectedZones() {
	if len(a.highlighted) == 0 {
		return
	}
	a.highlighted = nil
	a.anchor = -1
	if a.visible {
		a.redraw()
	}
}

func (a *GridArea) SetZoneColors(colors zone.ZoneColors) {
	a.colors = colors
	if a.visible {
		a.redraw()
	}
}

func (a *GridArea) SetOverlappingZonesAlgorithm(alg zone.OverlappingAlgorithm) {
	a.algorithm = alg
}

func (a *GridArea) redraw() {
	if a.overlay == nil {
		return
	}
	if err := a.overlay.Show(a.set.zones, a.highlighted, a.colors); err != nil {
		a.logger.Warn("failed to draw zones", "error", err)
	}
}

// MoveWindowIntoZoneByIndexSet snaps the window onto the union of set. With
// suppressMove the placement is only recorded.
func (a *GridArea) MoveWindowIntoZoneByIndexSet(window zone.WindowID, set zone.ZoneIndexSet, suppressMove bool) {
	target, ok := layout.Bounds(a.set.zones, set)
	if !ok {
		return
	}

	if !suppressMove {
		if current, err := a.mover.WindowRect(window); err == nil {
			if _, zoned := a.history.SavedSize(window); !zoned && !a.isZoneRect(current) {
				a.history.SaveSize(window, current)
			}
		}
		if err := a.mover.MoveWindow(window, target); err != nil {
			a.logger.Warn("failed to move window into zone", "window_id", window, "zones", []int(set), "error", err)
			return
		}
	}

	a.set.assign(window, set)
	a.history.SetLastZone(window, a.id, a.set.id, set)
	a.history.SetMultipleZones(window, len(set) > 1)
	a.logger.Debug("window placed", "window_id", window, "zones", []int(set), "suppressed", suppressMove)
}

func (a *GridArea) MoveWindowIntoZoneByDirectionAndIndex(window zone.WindowID, dir zone.Direction, cycle bool) bool {
	current := -1
	if set := a.currentZones(window); len(set) > 0 {
		current = set[0]
		if dir == zone.DirRight {
			current = set[len(set)-1]
		}
	}
	next, ok := layout.NextIndex(len(a.set.zones), current, dir, cycle)
	if !ok {
		return false
	}
	a.MoveWindowIntoZoneByIndexSet(window, zone.ZoneIndexSet{next}, false)
	return true
}

func (a *GridArea) MoveWindowIntoZoneByDirectionAndPosition(window zone.WindowID, dir zone.Direction, cycle bool) bool {
	from, current, ok := a.origin(window)
	if !ok {
		return false
	}
	next, ok := layout.Neighbor(a.set.zones, from, current, dir, cycle)
	if !ok && len(current) == 0 {
		// A free window with nothing beyond it snaps to the nearest zone.
		next = layout.Closest(a.set.zones, from.Center())
		ok = next >= 0
	}
	if !ok {
		return false
	}
	a.MoveWindowIntoZoneByIndexSet(window, zone.ZoneIndexSet{next}, false)
	return true
}

func (a *GridArea) ExtendWindowByDirectionAndPosition(window zone.WindowID, dir zone.Direction) bool {
	from, current, ok := a.origin(window)
	if !ok {
		return false
	}
	set, ok := layout.Extend(a.set.zones, current, from, dir)
	if !ok {
		return false
	}
	a.MoveWindowIntoZoneByIndexSet(window, set, false)
	return true
}

// origin returns the rectangle navigation starts from and the zones the
// window currently occupies.
func (a *GridArea) origin(window zone.WindowID) (zone.Rect, zone.ZoneIndexSet, bool) {
	current := a.currentZones(window)
	if bounds, ok := layout.Bounds(a.set.zones, current); ok {
		return bounds, current, true
	}
	r, err := a.mover.WindowRect(window)
	if err != nil {
		a.logger.Debug("failed to read window geometry", "window_id", window, "error", err)
		return zone.Rect{}, nil, false
	}
	return r, nil, true
}

func (a *GridArea) currentZones(window zone.WindowID) zone.ZoneIndexSet {
	if set := a.set.WindowZones(window); len(set) > 0 {
		return set
	}
	if set, ok := a.history.LastZone(window, a.id, a.set.id); ok {
		return set
	}
	return nil
}

func (a *GridArea) isZoneRect(r zone.Rect) bool {
	for _, z := range a.set.zones {
		if z == r {
			return true
		}
	}
	return false
}

func sameSet(a, b zone.ZoneIndexSet) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var _ zone.WorkArea = (*GridArea)(nil)
