package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/1broseidon/snapzone/internal/layout"
	"github.com/1broseidon/snapzone/internal/movesize"
	"github.com/1broseidon/snapzone/internal/settings"
	"github.com/1broseidon/snapzone/internal/workarea"
	"github.com/1broseidon/snapzone/internal/x11"
	"github.com/1broseidon/snapzone/internal/zone"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type move struct {
	window zone.WindowID
	rect   zone.Rect
}

type fakeBackend struct {
	monitors []x11.Monitor
	desktops []x11.Desktop
	current  int
	pointer  x11.PointerState
	active   zone.WindowID
	rects    map[zone.WindowID]zone.Rect
	moves    []move
	clients  []zone.WindowID
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		monitors: []x11.Monitor{
			{ID: 0, Name: "DP-1", Bounds: zone.Rect{Width: 1920, Height: 1080}, WorkArea: zone.Rect{Width: 1920, Height: 1080}},
			{ID: 1, Name: "DP-2", Bounds: zone.Rect{X: 1920, Width: 1920, Height: 1080}, WorkArea: zone.Rect{X: 1920, Width: 1920, Height: 1080}},
		},
		desktops: x11.DesktopsFromNames(2, []string{"main", "chat"}),
		rects:    make(map[zone.WindowID]zone.Rect),
	}
}

func (f *fakeBackend) CursorPosition() (zone.Point, error) { return f.pointer.Position, nil }

func (f *fakeBackend) MonitorFromPoint(pt zone.Point) (zone.MonitorID, bool) {
	m, ok := x11.MonitorAt(f.monitors, pt)
	return m.ID, ok
}

func (f *fakeBackend) MonitorFromWindow(w zone.WindowID) (zone.MonitorID, bool) {
	r, ok := f.rects[w]
	if !ok {
		return 0, false
	}
	m, ok := x11.MonitorForRect(f.monitors, r)
	return m.ID, ok
}

func (f *fakeBackend) WindowRect(w zone.WindowID) (zone.Rect, error) {
	r, ok := f.rects[w]
	if !ok {
		return zone.Rect{}, errors.New("no such window")
	}
	return r, nil
}

func (f *fakeBackend) MoveWindow(w zone.WindowID, r zone.Rect) error {
	f.moves = append(f.moves, move{w, r})
	f.rects[w] = r
	return nil
}

func (f *fakeBackend) RefreshMonitors() ([]x11.Monitor, error) { return f.monitors, nil }
func (f *fakeBackend) Desktops() ([]x11.Desktop, error)        { return f.desktops, nil }
func (f *fakeBackend) Pointer() (x11.PointerState, error)      { return f.pointer, nil }
func (f *fakeBackend) ActiveWindow() zone.WindowID             { return f.active }
func (f *fakeBackend) ClientWindows() ([]zone.WindowID, error) {
	if f.clients == nil {
		return nil, errors.New("no client list")
	}
	return f.clients, nil
}
func (f *fakeBackend) CurrentDesktop(d []x11.Desktop) (x11.Desktop, bool) {
	if len(d) == 0 {
		return x11.Desktop{}, false
	}
	return d[f.current], true
}

func (f *fakeBackend) at(x, y int, mask uint16) {
	f.pointer = x11.PointerState{Position: zone.Point{X: x, Y: y}, Mask: mask}
}

type fakeInspector struct {
	backend  *fakeBackend
	excluded zone.WindowID
}

func (i *fakeInspector) IsCandidate(w zone.WindowID, _ []string) bool { return w != i.excluded }
func (i *fakeInspector) Traits(zone.WindowID) movesize.Traits {
	return movesize.Traits{HasNoVisibleOwner: true, IsStandard: true}
}
func (i *fakeInspector) IsMaximized(zone.WindowID) bool      { return false }
func (i *fakeInspector) IsResizeCursor() bool                { return false }
func (i *fakeInspector) IsWindowElevated(zone.WindowID) bool { return false }
func (i *fakeInspector) IsProcessElevated() bool             { return false }
func (i *fakeInspector) MonitorFromWindow(w zone.WindowID) (zone.MonitorID, bool) {
	return i.backend.MonitorFromWindow(w)
}

type nopSizes struct{}

func (nopSizes) RestoreWindowSize(zone.WindowID) error { return nil }
func (nopSizes) ForgetWindowSize(zone.WindowID)        {}

type fakeGauges struct {
	desktops, monitors, areas int
	placements                map[string]int
}

func (g *fakeGauges) SetTopology(d, m, a int) { g.desktops, g.monitors, g.areas = d, m, a }
func (g *fakeGauges) ObservePlacement(kind string, ok bool) {
	if ok {
		g.placements[kind]++
	}
}

const (
	button1 = xproto.KeyButMaskButton1
	shift   = xproto.ModMaskShift
)

func newTestTracker(t *testing.T, s *settings.Settings) (*Tracker, *fakeBackend, *fakeGauges) {
	t.Helper()
	if s == nil {
		s = settings.DefaultSettings()
	}
	backend := newFakeBackend()
	gauges := &fakeGauges{placements: make(map[string]int)}
	tr, err := New(Config{
		Backend:   backend,
		Settings:  settings.NewStore(s),
		Inspector: &fakeInspector{backend: backend, excluded: 666},
		Sizes:     nopSizes{},
		Gauges:    gauges,
	})
	require.NoError(t, err)
	tr.reconcile()
	return tr, backend, gauges
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestReconcile_BuildsAreaPerDesktopAndMonitor(t *testing.T) {
	tr, _, gauges := newTestTracker(t, nil)

	assert.Len(t, tr.areas, 4)
	assert.Equal(t, 2, gauges.desktops)
	assert.Equal(t, 4, gauges.areas)
	for _, d := range tr.desktops {
		assert.Len(t, tr.registry.WorkAreasForDesktop(d.ID), 2)
	}
	assert.Equal(t, "main", tr.current.Name)
}

func TestReconcile_DesktopRemovedAndMonitorChanged(t *testing.T) {
	tr, backend, _ := newTestTracker(t, nil)
	before := tr.registry.WorkArea(tr.desktops[0].ID, 0)
	require.NotNil(t, before)

	backend.desktops = backend.desktops[:1]
	tr.reconcile()
	assert.Len(t, tr.areas, 2)
	assert.Len(t, tr.registry.Desktops(), 1)
	assert.Same(t, before, tr.registry.WorkArea(tr.desktops[0].ID, 0), "unchanged areas are kept")

	backend.monitors = backend.monitors[:1]
	tr.reconcile()
	assert.Len(t, tr.areas, 1)
	assert.NotSame(t, before, tr.registry.WorkArea(tr.desktops[0].ID, 0), "topology change rebuilds areas")
}

func TestReconcile_ForgetsClosedWindows(t *testing.T) {
	tr, backend, _ := newTestTracker(t, nil)
	tr.history.SaveSize(7, zone.Rect{Width: 300, Height: 200})
	tr.history.SetMultipleZones(8, true)

	// Without a client list nothing is forgotten.
	tr.reconcile()
	assert.ElementsMatch(t, []zone.WindowID{7, 8}, tr.history.Windows())

	backend.clients = []zone.WindowID{8, 9}
	tr.reconcile()
	_, ok := tr.history.SavedSize(7)
	assert.False(t, ok, "closed window is forgotten")
	assert.True(t, tr.history.IsMultipleZones(8))
	assert.Equal(t, []zone.WindowID{8}, tr.history.Windows())
}

func TestReconcile_SpanAcrossMonitors(t *testing.T) {
	s := settings.DefaultSettings()
	s.SpanZonesAcrossMonitors = true
	tr, _, _ := newTestTracker(t, s)

	assert.Len(t, tr.areas, 2)
	wa := tr.registry.WorkArea(tr.desktops[0].ID, zone.AllMonitors)
	require.NotNil(t, wa)
	assert.Equal(t, zone.Rect{Width: 3840, Height: 1080}, wa.(*workarea.GridArea).Bounds())
	assert.Equal(t, zone.AllMonitors, tr.monitorAt(zone.Point{X: 3000, Y: 10}))
}

func TestReconcile_PerMonitorLayout(t *testing.T) {
	s := settings.DefaultSettings()
	s.Layouts["DP-2"] = layout.Spec{Type: layout.TypeColumns, ZoneCount: 2}
	tr, _, _ := newTestTracker(t, s)

	wa := tr.registry.WorkArea(tr.current.ID, 1)
	require.NotNil(t, wa)
	assert.Len(t, wa.ZoneSet().Zones(), 2)
	assert.Len(t, tr.registry.WorkArea(tr.current.ID, 0).ZoneSet().Zones(), 3)
	assert.Equal(t, layout.TypeColumns, tr.areas[areaID(tr.current, "DP-2")].Layout.Type)
}

// drag simulates pressing on window 100, moving it, then moving the pointer
// to (x, y) with mask held, and releasing.
func drag(tr *Tracker, backend *fakeBackend, x, y int, mask uint16) {
	backend.active = 100
	backend.rects[100] = zone.Rect{X: 500, Y: 300, Width: 800, Height: 600}

	backend.at(600, 310, button1|mask)
	tr.tick()

	backend.rects[100] = zone.Rect{X: 560, Y: 300, Width: 800, Height: 600}
	backend.at(660, 310, button1|mask)
	tr.tick()

	backend.at(x, y, button1|mask)
	tr.tick()

	backend.at(x, y, 0)
	tr.tick()
}

func TestTick_DragWithShiftSnapsIntoZone(t *testing.T) {
	tr, backend, _ := newTestTracker(t, nil)

	drag(tr, backend, 300, 500, shift)

	require.Len(t, backend.moves, 1)
	zones, err := layout.Zones(settings.DefaultSettings().DefaultLayout, backend.monitors[0].WorkArea)
	require.NoError(t, err)
	assert.Equal(t, zones[0], backend.moves[0].rect)
	assert.False(t, tr.session.InDragging())
}

func TestTick_DragWithoutShiftDoesNotSnap(t *testing.T) {
	tr, backend, _ := newTestTracker(t, nil)

	drag(tr, backend, 300, 500, 0)

	assert.Empty(t, backend.moves)
	assert.False(t, tr.session.InDragging())
}

func TestTick_ShiftDragDisabledSnapsWithoutModifier(t *testing.T) {
	s := settings.DefaultSettings()
	s.ShiftDrag = false
	tr, backend, _ := newTestTracker(t, s)

	drag(tr, backend, 2500, 500, 0)

	require.Len(t, backend.moves, 1)
	assert.GreaterOrEqual(t, backend.moves[0].rect.X, 1920, "dropped on the second monitor")
}

func TestTick_ResizeIsNotADrag(t *testing.T) {
	tr, backend, _ := newTestTracker(t, nil)
	backend.active = 100
	backend.rects[100] = zone.Rect{X: 500, Y: 300, Width: 800, Height: 600}

	backend.at(1300, 900, button1|shift)
	tr.tick()
	backend.rects[100] = zone.Rect{X: 500, Y: 300, Width: 900, Height: 700}
	backend.at(1400, 1000, button1|shift)
	tr.tick()
	backend.rects[100] = zone.Rect{X: 520, Y: 300, Width: 900, Height: 700}
	tr.tick()

	assert.False(t, tr.session.InDragging())
	backend.at(1400, 1000, 0)
	tr.tick()
	assert.Empty(t, backend.moves)
}

func TestTick_ExcludedWindowPassesThrough(t *testing.T) {
	tr, backend, _ := newTestTracker(t, nil)
	backend.active = 666
	backend.rects[666] = zone.Rect{X: 500, Y: 300, Width: 800, Height: 600}

	backend.at(600, 310, button1|shift)
	tr.tick()
	backend.rects[666] = zone.Rect{X: 600, Y: 300, Width: 800, Height: 600}
	backend.at(700, 310, button1|shift)
	tr.tick()

	assert.False(t, tr.session.InDragging())
	backend.at(700, 310, 0)
	tr.tick()
	assert.Empty(t, backend.moves)
}

func TestTick_SecondaryClickTogglesWithMouseSwitch(t *testing.T) {
	s := settings.DefaultSettings()
	s.MouseSwitch = true
	tr, backend, _ := newTestTracker(t, s)
	backend.active = 100
	backend.rects[100] = zone.Rect{X: 500, Y: 300, Width: 800, Height: 600}

	backend.at(600, 310, button1)
	tr.tick()
	backend.rects[100] = zone.Rect{X: 560, Y: 300, Width: 800, Height: 600}
	backend.at(660, 310, button1)
	tr.tick()
	require.True(t, tr.session.InDragging())
	assert.False(t, tr.session.DragEnabled())

	backend.at(300, 500, button1|xproto.KeyButMaskButton3)
	tr.tick()
	assert.True(t, tr.session.SecondaryToggle())
	assert.True(t, tr.session.DragEnabled())

	// Holding the button is not a second click.
	tr.tick()
	assert.True(t, tr.session.SecondaryToggle())

	backend.at(300, 500, 0)
	tr.tick()
	require.Len(t, backend.moves, 1)
}

func TestPlace_KeyboardMoves(t *testing.T) {
	tr, backend, _ := newTestTracker(t, nil)
	backend.active = 100
	backend.rects[100] = zone.Rect{X: 100, Y: 100, Width: 400, Height: 300}

	ok, err := tr.place(PlaceRequest{Kind: PlaceZones, Zones: zone.ZoneIndexSet{1}})
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, backend.moves, 1)

	ok, err = tr.place(PlaceRequest{Kind: PlaceMove, Direction: zone.DirLeft})
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, backend.moves, 2)

	_, err = tr.place(PlaceRequest{Kind: PlaceZones, Zones: zone.ZoneIndexSet{9}})
	assert.Error(t, err)

	ok, err = tr.place(PlaceRequest{Kind: PlaceMove, Window: 666, Direction: zone.DirLeft})
	require.NoError(t, err)
	assert.False(t, ok, "excluded windows are not placed")

	backend.active = 0
	_, err = tr.place(PlaceRequest{Kind: PlaceMove, Direction: zone.DirLeft})
	assert.Error(t, err)
}

func TestTracker_RunServesRequests(t *testing.T) {
	tr, _, gauges := newTestTracker(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tr.Run(ctx)
		close(done)
	}()

	st, err := tr.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "main", st.Desktop)
	assert.Equal(t, 4, st.WorkAreas)
	assert.False(t, st.Dragging)

	areas, err := tr.Areas(ctx)
	require.NoError(t, err)
	require.Len(t, areas, 4)
	assert.True(t, areas[0].Current)
	assert.Equal(t, "DP-1", areas[0].Monitor)
	assert.False(t, areas[3].Current)

	next := settings.DefaultSettings()
	next.SpanZonesAcrossMonitors = true
	require.NoError(t, tr.ApplySettings(ctx, next))
	st, err = tr.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.WorkAreas)

	cancel()
	<-done
	_, err = tr.Status(context.Background())
	assert.ErrorIs(t, err, ErrLoopStopped)
	_ = gauges
}

func TestLoop_DoRespectsContext(t *testing.T) {
	l := NewLoop(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Do(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded, "nobody runs the loop")
}

func TestLoop_RecoversFromPanics(t *testing.T) {
	l := NewLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx, time.Hour, func() {})

	require.NoError(t, l.Do(ctx, func() { panic("boom") }))
	ran := false
	require.NoError(t, l.Do(ctx, func() { ran = true }))
	assert.True(t, ran)
}
