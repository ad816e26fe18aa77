// Package zonetest provides recording fakes of the zone capability interfaces.
package zonetest

import (
	"fmt"
	"strings"

	"github.com/1broseidon/snapzone/internal/zone"
	"github.com/google/uuid"
)

// ZoneSet is a fake zone.ZoneSet recording dismissed windows.
type ZoneSet struct {
	SetID     uuid.UUID
	Rects     []zone.Rect
	Dismissed []zone.WindowID
}

func (z *ZoneSet) ID() uuid.UUID { return z.SetID }

func (z *ZoneSet) Zones() []zone.Rect { return z.Rects }

func (z *ZoneSet) DismissWindow(window zone.WindowID) {
	z.Dismissed = append(z.Dismissed, window)
}

// Update is a recorded MoveSizeUpdate call.
type Update struct {
	Point           zone.Point
	DragEnabled     bool
	SelectManyZones bool
}

// WorkArea is a fake zone.WorkArea that records every call it receives.
type WorkArea struct {
	Name  string
	Zones *ZoneSet // nil means no active layout

	Calls   []string
	Updates []Update
	Ended   []zone.Point
	Colors  []zone.ZoneColors
	Algs    []zone.OverlappingAlgorithm

	MoveResult bool
}

// New returns a fake work area with an active zone set.
func New(name string) *WorkArea {
	return &WorkArea{
		Name:       name,
		Zones:      &ZoneSet{SetID: uuid.New()},
		MoveResult: true,
	}
}

func (w *WorkArea) record(format string, args ...any) {
	w.Calls = append(w.Calls, fmt.Sprintf(format, args...))
}

// Count returns how many recorded calls start with prefix.
func (w *WorkArea) Count(prefix string) int {
	n := 0
	for _, c := range w.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Reset forgets all recorded calls.
func (w *WorkArea) Reset() {
	w.Calls = nil
	w.Updates = nil
	w.Ended = nil
}

func (w *WorkArea) MoveSizeEnter(window zone.WindowID) {
	w.record("MoveSizeEnter(%d)", window)
}

func (w *WorkArea) MoveSizeUpdate(pt zone.Point, dragEnabled, selectManyZones bool) {
	w.record("MoveSizeUpdate")
	w.Updates = append(w.Updates, Update{Point: pt, DragEnabled: dragEnabled, SelectManyZones: selectManyZones})
}

func (w *WorkArea) MoveSizeEnd(window zone.WindowID, pt zone.Point) {
	w.record("MoveSizeEnd(%d)", window)
	w.Ended = append(w.Ended, pt)
}

func (w *WorkArea) ShowZoneWindow()     { w.record("ShowZoneWindow") }
func (w *WorkArea) HideZoneWindow()     { w.record("HideZoneWindow") }
func (w *WorkArea) ClearSelectedZones() { w.record("ClearSelectedZones") }

func (w *WorkArea) ZoneSet() zone.ZoneSet {
	if w.Zones == nil {
		return nil
	}
	return w.Zones
}

func (w *WorkArea) UniqueID() string { return w.Name }

func (w *WorkArea) SetZoneColors(colors zone.ZoneColors) {
	w.Colors = append(w.Colors, colors)
}

func (w *WorkArea) SetOverlappingZonesAlgorithm(alg zone.OverlappingAlgorithm) {
	w.Algs = append(w.Algs, alg)
}

func (w *WorkArea) MoveWindowIntoZoneByIndexSet(window zone.WindowID, set zone.ZoneIndexSet, suppressMove bool) {
	w.record("MoveWindowIntoZoneByIndexSet(%d,%v)", window, []int(set))
}

func (w *WorkArea) MoveWindowIntoZoneByDirectionAndIndex(window zone.WindowID, dir zone.Direction, cycle bool) bool {
	w.record("MoveWindowIntoZoneByDirectionAndIndex(%d,%s)", window, dir)
	return w.MoveResult
}

func (w *WorkArea) MoveWindowIntoZoneByDirectionAndPosition(window zone.WindowID, dir zone.Direction, cycle bool) bool {
	w.record("MoveWindowIntoZoneByDirectionAndPosition(%d,%s)", window, dir)
	return w.MoveResult
}

func (w *WorkArea) ExtendWindowByDirectionAndPosition(window zone.WindowID, dir zone.Direction) bool {
	w.record("ExtendWindowByDirectionAndPosition(%d,%s)", window, dir)
	return w.MoveResult
}

var _ zone.WorkArea = (*WorkArea)(nil)
