package workarea

import (
	"errors"
	"testing"

	"github.com/1broseidon/snapzone/internal/zone"
	"github.com/1broseidon/snapzone/internal/zone/zonetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLocator struct {
	cursor        zone.Point
	cursorErr     error
	monitors      map[zone.Point]zone.MonitorID
	windowMonitor map[zone.WindowID]zone.MonitorID
}

func (f *fakeLocator) CursorPosition() (zone.Point, error) {
	return f.cursor, f.cursorErr
}

func (f *fakeLocator) MonitorFromPoint(pt zone.Point) (zone.MonitorID, bool) {
	m, ok := f.monitors[pt]
	return m, ok
}

func (f *fakeLocator) MonitorFromWindow(window zone.WindowID) (zone.MonitorID, bool) {
	m, ok := f.windowMonitor[window]
	return m, ok
}

var (
	desktopA = zone.NewDesktopID(0, "a")
	desktopB = zone.NewDesktopID(1, "b")
	desktopC = zone.NewDesktopID(2, "c")
)

func TestRegistry_AddAndLookup(t *testing.T) {
	r := NewRegistry(nil)
	first := zonetest.New("first")
	second := zonetest.New("second")

	assert.Nil(t, r.WorkArea(desktopA, 1))
	assert.True(t, r.IsNewWorkArea(desktopA, 1))

	r.AddWorkArea(desktopA, 1, first)
	assert.Same(t, first, r.WorkArea(desktopA, 1))
	assert.False(t, r.IsNewWorkArea(desktopA, 1))
	assert.True(t, r.IsNewWorkArea(desktopA, 2))
	assert.Nil(t, r.WorkArea(desktopA, 2))
	assert.Nil(t, r.WorkArea(desktopB, 1))

	r.AddWorkArea(desktopA, 1, second)
	assert.Same(t, second, r.WorkArea(desktopA, 1), "latest add wins")
}

func TestRegistry_RegisterUpdatesReconcilesDesktops(t *testing.T) {
	r := NewRegistry(nil)
	r.RegisterUpdates([]zone.DesktopID{desktopA, desktopB})

	wa := zonetest.New("a1")
	wb := zonetest.New("b1")
	r.AddWorkArea(desktopA, 1, wa)
	r.AddWorkArea(desktopB, 1, wb)

	r.RegisterUpdates([]zone.DesktopID{desktopB, desktopC})

	assert.Nil(t, r.WorkArea(desktopA, 1), "desktop A must be dropped")
	assert.Empty(t, r.WorkAreasForDesktop(desktopA))
	assert.Same(t, wb, r.WorkArea(desktopB, 1), "desktop B must be preserved")
	assert.Len(t, r.WorkAreasForDesktop(desktopB), 1)
	assert.NotNil(t, r.WorkAreasForDesktop(desktopC))
	assert.Empty(t, r.WorkAreasForDesktop(desktopC))
	assert.ElementsMatch(t, []zone.DesktopID{desktopB, desktopC}, r.Desktops())
}

func TestRegistry_AllMonitorsTakesPrecedence(t *testing.T) {
	loc := &fakeLocator{
		cursor:        zone.Point{X: 10, Y: 10},
		monitors:      map[zone.Point]zone.MonitorID{{X: 10, Y: 10}: 1},
		windowMonitor: map[zone.WindowID]zone.MonitorID{42: 1},
	}
	r := NewRegistry(loc)
	perMonitor := zonetest.New("m1")
	spanning := zonetest.New("all")

	r.AddWorkArea(desktopA, 1, perMonitor)
	assert.Same(t, perMonitor, r.WorkAreaFromCursor(desktopA))
	assert.Same(t, perMonitor, r.WorkAreaForWindow(42, desktopA))

	r.AddWorkArea(desktopA, zone.AllMonitors, spanning)
	assert.Same(t, spanning, r.WorkAreaFromCursor(desktopA))
	assert.Same(t, spanning, r.WorkAreaForWindow(42, desktopA))
	assert.Same(t, spanning, r.WorkAreaForWindow(7, desktopA), "unknown window still resolves to spanning area")
}

func TestRegistry_CursorLookupFailsGracefully(t *testing.T) {
	loc := &fakeLocator{cursorErr: errors.New("no pointer")}
	r := NewRegistry(loc)
	r.AddWorkArea(desktopA, 1, zonetest.New("m1"))

	assert.Nil(t, r.WorkAreaFromCursor(desktopA))

	loc.cursorErr = nil
	loc.cursor = zone.Point{X: 5000, Y: 5000}
	assert.Nil(t, r.WorkAreaFromCursor(desktopA), "point outside all monitors")
	assert.Nil(t, r.WorkAreaForWindow(99, desktopA), "window without monitor")
}

func TestRegistry_AllWorkAreasAndClear(t *testing.T) {
	r := NewRegistry(nil)
	a := zonetest.New("a")
	b := zonetest.New("b")
	c := zonetest.New("c")
	r.AddWorkArea(desktopA, 0, a)
	r.AddWorkArea(desktopA, 1, b)
	r.AddWorkArea(desktopB, 0, c)

	all := r.AllWorkAreas()
	require.Len(t, all, 3)
	assert.ElementsMatch(t, []zone.WorkArea{a, b, c}, all)

	r.Clear()
	assert.Empty(t, r.AllWorkAreas())
	assert.True(t, r.IsNewWorkArea(desktopA, 0))
}

func TestRegistry_BroadcastsConfiguration(t *testing.T) {
	r := NewRegistry(nil)
	a := zonetest.New("a")
	b := zonetest.New("b")
	r.AddWorkArea(desktopA, 0, a)
	r.AddWorkArea(desktopB, 0, b)

	colors := zone.ZoneColors{Primary: 0x112233, Border: 0x445566, Highlight: 0x778899, Opacity: 50}
	r.UpdateZoneColors(colors)
	r.UpdateOverlappingAlgorithm(zone.OverlapLargest)

	for _, wa := range []*zonetest.WorkArea{a, b} {
		assert.Equal(t, []zone.ZoneColors{colors}, wa.Colors)
		assert.Equal(t, []zone.OverlappingAlgorithm{zone.OverlapLargest}, wa.Algs)
	}
}
