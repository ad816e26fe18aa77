package workarea

import (
	"bytes"
	"sort"

	"github.com/1broseidon/snapzone/internal/zone"
)

// MonitorLocator resolves monitors from the pointer or a window.
type MonitorLocator interface {
	CursorPosition() (zone.Point, error)
	MonitorFromPoint(pt zone.Point) (zone.MonitorID, bool)
	MonitorFromWindow(window zone.WindowID) (zone.MonitorID, bool)
}

// Registry maps (desktop, monitor) pairs to work areas.
//
// A Registry is not safe for concurrent use; it is owned by the tracker loop.
type Registry struct {
	locator MonitorLocator
	areas   map[zone.DesktopID]map[zone.MonitorID]zone.WorkArea
}

// NewRegistry creates an empty registry. locator may be nil, in which case the
// cursor and window lookups only resolve spanning work areas.
func NewRegistry(locator MonitorLocator) *Registry {
	return &Registry{
		locator: locator,
		areas:   make(map[zone.DesktopID]map[zone.MonitorID]zone.WorkArea),
	}
}

// AddWorkArea inserts or replaces the work area for (desktop, monitor).
func (r *Registry) AddWorkArea(desktop zone.DesktopID, monitor zone.MonitorID, wa zone.WorkArea) {
	perDesktop, ok := r.areas[desktop]
	if !ok {
		perDesktop = make(map[zone.MonitorID]zone.WorkArea)
		r.areas[desktop] = perDesktop
	}
	perDesktop[monitor] = wa
}

// WorkArea returns the work area registered for exactly (desktop, monitor).
func (r *Registry) WorkArea(desktop zone.DesktopID, monitor zone.MonitorID) zone.WorkArea {
	if perDesktop, ok := r.areas[desktop]; ok {
		if wa, ok := perDesktop[monitor]; ok {
			return wa
		}
	}
	return nil
}

// WorkAreaFromCursor returns the spanning work area of desktop if there is
// one, otherwise the work area of the monitor under the pointer.
func (r *Registry) WorkAreaFromCursor(desktop zone.DesktopID) zone.WorkArea {
	if wa := r.WorkArea(desktop, zone.AllMonitors); wa != nil {
		return wa
	}
	if r.locator == nil {
		return nil
	}
	pt, err := r.locator.CursorPosition()
	if err != nil {
		return nil
	}
	monitor, ok := r.locator.MonitorFromPoint(pt)
	if !ok {
		return nil
	}
	return r.WorkArea(desktop, monitor)
}

// WorkAreaForWindow returns the spanning work area of desktop if there is
// one, otherwise the work area of the monitor containing window.
func (r *Registry) WorkAreaForWindow(window zone.WindowID, desktop zone.DesktopID) zone.WorkArea {
	if wa := r.WorkArea(desktop, zone.AllMonitors); wa != nil {
		return wa
	}
	if r.locator == nil {
		return nil
	}
	monitor, ok := r.locator.MonitorFromWindow(window)
	if !ok {
		return nil
	}
	return r.WorkArea(desktop, monitor)
}

// WorkAreasForDesktop returns the monitor map of desktop. The result is never
// nil and must not be modified by callers.
func (r *Registry) WorkAreasForDesktop(desktop zone.DesktopID) map[zone.MonitorID]zone.WorkArea {
	if perDesktop, ok := r.areas[desktop]; ok {
		return perDesktop
	}
	return map[zone.MonitorID]zone.WorkArea{}
}

// AllWorkAreas returns every registered work area in no particular order.
func (r *Registry) AllWorkAreas() []zone.WorkArea {
	var all []zone.WorkArea
	for _, perDesktop := range r.areas {
		for _, wa := range perDesktop {
			all = append(all, wa)
		}
	}
	return all
}

// IsNewWorkArea reports whether nothing is registered for (desktop, monitor).
func (r *Registry) IsNewWorkArea(desktop zone.DesktopID, monitor zone.MonitorID) bool {
	if perDesktop, ok := r.areas[desktop]; ok {
		if _, ok := perDesktop[monitor]; ok {
			return false
		}
	}
	return true
}

// RegisterUpdates reconciles the registry with the currently active desktops.
// Desktops missing from active are dropped with all their work areas; newly
// seen desktops start with an empty monitor map.
func (r *Registry) RegisterUpdates(active []zone.DesktopID) {
	activeSet := make(map[zone.DesktopID]struct{}, len(active))
	for _, id := range active {
		activeSet[id] = struct{}{}
	}

	for id := range r.areas {
		if _, ok := activeSet[id]; !ok {
			delete(r.areas, id)
			continue
		}
		delete(activeSet, id)
	}

	for id := range activeSet {
		r.areas[id] = make(map[zone.MonitorID]zone.WorkArea)
	}
}

// Clear drops every desktop and work area.
func (r *Registry) Clear() {
	r.areas = make(map[zone.DesktopID]map[zone.MonitorID]zone.WorkArea)
}

// UpdateZoneColors pushes colors to every registered work area.
func (r *Registry) UpdateZoneColors(colors zone.ZoneColors) {
	for _, perDesktop := range r.areas {
		for _, wa := range perDesktop {
			wa.SetZoneColors(colors)
		}
	}
}

// UpdateOverlappingAlgorithm pushes alg to every registered work area.
func (r *Registry) UpdateOverlappingAlgorithm(alg zone.OverlappingAlgorithm) {
	for _, perDesktop := range r.areas {
		for _, wa := range perDesktop {
			wa.SetOverlappingZonesAlgorithm(alg)
		}
	}
}

// Desktops returns the registered desktop IDs in a stable order.
func (r *Registry) Desktops() []zone.DesktopID {
	ids := make([]zone.DesktopID, 0, len(r.areas))
	for id := range r.areas {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}
