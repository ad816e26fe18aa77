package movesize

import (
	"errors"
	"testing"

	"github.com/1broseidon/snapzone/internal/zone"
	"github.com/1broseidon/snapzone/internal/zone/zonetest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettings struct{ opts Options }

func (f *fakeSettings) Options() Options { return f.opts }

type fakeInspector struct {
	excluded        map[zone.WindowID]bool
	startTraits     Traits
	endTraits       *Traits
	dragging        bool
	maximized       map[zone.WindowID]bool
	resizeCursor    bool
	elevated        map[zone.WindowID]bool
	processElevated bool
	monitors        map[zone.WindowID]zone.MonitorID
}

func newFakeInspector() *fakeInspector {
	return &fakeInspector{
		excluded:    make(map[zone.WindowID]bool),
		startTraits: Traits{HasNoVisibleOwner: true, IsStandard: true},
		maximized:   make(map[zone.WindowID]bool),
		elevated:    make(map[zone.WindowID]bool),
		monitors:    make(map[zone.WindowID]zone.MonitorID),
	}
}

func (f *fakeInspector) IsCandidate(window zone.WindowID, excludedApps []string) bool {
	return !f.excluded[window]
}

func (f *fakeInspector) Traits(window zone.WindowID) Traits {
	if f.dragging && f.endTraits != nil {
		return *f.endTraits
	}
	f.dragging = true
	return f.startTraits
}

func (f *fakeInspector) IsMaximized(window zone.WindowID) bool      { return f.maximized[window] }
func (f *fakeInspector) IsResizeCursor() bool                       { return f.resizeCursor }
func (f *fakeInspector) IsWindowElevated(window zone.WindowID) bool { return f.elevated[window] }
func (f *fakeInspector) IsProcessElevated() bool                    { return f.processElevated }

func (f *fakeInspector) MonitorFromWindow(window zone.WindowID) (zone.MonitorID, bool) {
	m, ok := f.monitors[window]
	return m, ok
}

type fakeTransparency struct {
	current map[zone.WindowID]Opacity
	sets    []Opacity
}

func (f *fakeTransparency) Opacity(window zone.WindowID) (Opacity, error) {
	return f.current[window], nil
}

func (f *fakeTransparency) SetOpacity(window zone.WindowID, o Opacity) error {
	f.current[window] = o
	f.sets = append(f.sets, o)
	return nil
}

type fakeSizes struct {
	restored []zone.WindowID
	forgot   []zone.WindowID
	err      error
}

func (f *fakeSizes) RestoreWindowSize(window zone.WindowID) error {
	if f.err != nil {
		return f.err
	}
	f.restored = append(f.restored, window)
	return nil
}

func (f *fakeSizes) ForgetWindowSize(window zone.WindowID) {
	f.forgot = append(f.forgot, window)
}

type fakeHooks struct {
	shift, ctrl  bool
	mouseArmed   bool
	modsArmed    bool
	mouseEnables int
}

func (f *fakeHooks) EnableMouseHook()         { f.mouseArmed = true; f.mouseEnables++ }
func (f *fakeHooks) DisableMouseHook()        { f.mouseArmed = false }
func (f *fakeHooks) EnableModifierTracking()  { f.modsArmed = true }
func (f *fakeHooks) DisableModifierTracking() { f.modsArmed = false }
func (f *fakeHooks) ShiftHeld() bool          { return f.shift }
func (f *fakeHooks) CtrlHeld() bool           { return f.ctrl }

type fakeNotifier struct{ sent int }

func (f *fakeNotifier) Notify(summary, body string) error {
	f.sent++
	return nil
}

type removal struct {
	window zone.WindowID
	areaID string
	setID  uuid.UUID
}

type fakeHistory struct {
	removed []removal
	cleared []zone.WindowID
}

func (f *fakeHistory) RemoveAppLastZone(window zone.WindowID, areaID string, setID uuid.UUID) bool {
	f.removed = append(f.removed, removal{window, areaID, setID})
	return true
}

func (f *fakeHistory) ClearMultipleZones(window zone.WindowID) {
	f.cleared = append(f.cleared, window)
}

type fakeObserver struct{ events []Event }

func (f *fakeObserver) Observe(e Event) { f.events = append(f.events, e) }

type harness struct {
	session      *Session
	settings     *fakeSettings
	inspector    *fakeInspector
	transparency *fakeTransparency
	sizes        *fakeSizes
	hooks        *fakeHooks
	notifier     *fakeNotifier
	history      *fakeHistory
	observer     *fakeObserver
	keyUpdates   int

	m1, m2 *zonetest.WorkArea
	areas  map[zone.MonitorID]zone.WorkArea
}

const (
	mon1 zone.MonitorID = 1
	mon2 zone.MonitorID = 2
	win  zone.WindowID  = 100
)

func newHarness(t *testing.T) *harness {
	t.Helper()
	elevationWarned.Store(false)

	h := &harness{
		settings:     &fakeSettings{},
		inspector:    newFakeInspector(),
		transparency: &fakeTransparency{current: make(map[zone.WindowID]Opacity)},
		sizes:        &fakeSizes{},
		hooks:        &fakeHooks{},
		notifier:     &fakeNotifier{},
		history:      &fakeHistory{},
		observer:     &fakeObserver{},
		m1:           zonetest.New("m1"),
		m2:           zonetest.New("m2"),
	}
	h.areas = map[zone.MonitorID]zone.WorkArea{mon1: h.m1, mon2: h.m2}
	h.session = New(Config{
		Settings:     h.settings,
		Inspector:    h.inspector,
		Transparency: h.transparency,
		Sizes:        h.sizes,
		Hooks:        h.hooks,
		Notifier:     h.notifier,
		History:      h.history,
		Observer:     h.observer,
		OnKeyUpdate:  func() { h.keyUpdates++ },
	})
	return h
}

func (h *harness) start(window zone.WindowID, monitor zone.MonitorID) {
	h.session.MoveSizeStart(window, monitor, zone.Point{X: 10, Y: 10}, h.areas)
}

func (h *harness) update(monitor zone.MonitorID) {
	h.session.MoveSizeUpdate(monitor, zone.Point{X: 20, Y: 20}, h.areas)
}

func (h *harness) end(window zone.WindowID) {
	h.session.MoveSizeEnd(window, zone.Point{X: 30, Y: 30}, h.areas)
}

func TestDragEnabled(t *testing.T) {
	tests := []struct {
		invert, shift, toggle bool
		want                  bool
	}{
		{false, false, false, true},
		{false, true, false, false},
		{false, false, true, false},
		{false, true, true, true},
		{true, false, false, false},
		{true, true, false, true},
		{true, false, true, true},
		{true, true, true, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DragEnabled(tt.invert, tt.shift, tt.toggle),
			"DragEnabled(%v, %v, %v)", tt.invert, tt.shift, tt.toggle)
	}
}

func TestDragEnabled_FlipProperties(t *testing.T) {
	for _, invert := range []bool{false, true} {
		for _, shift := range []bool{false, true} {
			for _, toggle := range []bool{false, true} {
				base := DragEnabled(invert, shift, toggle)
				assert.NotEqual(t, base, DragEnabled(invert, !shift, toggle), "flipping shift flips the result")
				assert.NotEqual(t, base, DragEnabled(invert, shift, !toggle), "flipping the toggle flips the result")
				assert.Equal(t, base, DragEnabled(invert, !shift, !toggle), "flipping both restores the result")
			}
		}
	}
}

func TestSession_ExcludedAppNeverDrags(t *testing.T) {
	h := newHarness(t)
	h.inspector.excluded[win] = true

	h.start(win, mon1)
	assert.False(t, h.session.InDragging())

	h.update(mon1)
	h.end(win)

	assert.Empty(t, h.m1.Calls)
	assert.Empty(t, h.m2.Calls)
	assert.False(t, h.hooks.modsArmed)
}

func TestSession_ResizeCursorIgnoresStart(t *testing.T) {
	h := newHarness(t)
	h.inspector.resizeCursor = true

	h.start(win, mon1)
	assert.False(t, h.session.InDragging())
	assert.Empty(t, h.m1.Calls)
}

func TestSession_DragCommitsOnDrop(t *testing.T) {
	h := newHarness(t)
	h.settings.opts.MouseSwitch = true

	h.start(win, mon1)
	require.True(t, h.session.InDragging())
	assert.True(t, h.session.DragEnabled())
	assert.Same(t, h.m1, h.session.ActiveWorkArea())
	assert.Equal(t, win, h.session.DraggedWindow())
	assert.True(t, h.hooks.mouseArmed)
	assert.True(t, h.hooks.modsArmed)
	assert.Equal(t, 1, h.m1.Count("MoveSizeEnter"))
	assert.Equal(t, 0, h.m2.Count("ShowZoneWindow"), "other monitors stay hidden")
	assert.Equal(t, []zone.WindowID{win}, h.m1.Zones.Dismissed)

	h.hooks.ctrl = true
	h.update(mon1)
	require.Len(t, h.m1.Updates, 1)
	require.Len(t, h.m2.Updates, 1, "every work area sees the pointer")
	assert.Equal(t, zonetest.Update{Point: zone.Point{X: 20, Y: 20}, DragEnabled: true, SelectManyZones: true}, h.m1.Updates[0])

	h.end(win)
	assert.Equal(t, 1, h.m1.Count("MoveSizeEnd"))
	assert.Equal(t, 0, h.m2.Count("MoveSizeEnd"))
	assert.Equal(t, []zone.Point{{X: 30, Y: 30}}, h.m1.Ended)
	assert.Equal(t, 1, h.m1.Count("HideZoneWindow"))
	assert.Equal(t, 1, h.m2.Count("HideZoneWindow"))
	assert.False(t, h.hooks.mouseArmed)
	assert.False(t, h.hooks.modsArmed)
	assert.Contains(t, h.observer.events, EventCommit)
}

func TestSession_MaximizedDropNeverCommits(t *testing.T) {
	h := newHarness(t)
	h.settings.opts.MakeDraggedWindowTransparent = true
	h.inspector.maximized[win] = true

	h.start(win, mon1)
	h.update(mon1)
	h.end(win)

	assert.Equal(t, 0, h.m1.Count("MoveSizeEnd"))
	assert.Contains(t, h.observer.events, EventAbortMaximized)
	assert.Equal(t, Opacity{}, h.transparency.current[win], "opacity restored before abort")
	assert.False(t, h.session.InDragging())
}

func TestSession_TabMergeAborts(t *testing.T) {
	h := newHarness(t)
	h.inspector.endTraits = &Traits{HasNoVisibleOwner: true, IsStandard: false}

	h.start(win, mon1)
	h.end(win)

	assert.Equal(t, 0, h.m1.Count("MoveSizeEnd"))
	assert.Contains(t, h.observer.events, EventAbortTabMerge)
}

func TestSession_NonStandardAtStartStillCommits(t *testing.T) {
	h := newHarness(t)
	h.inspector.startTraits = Traits{HasNoVisibleOwner: true, IsStandard: false}
	h.inspector.endTraits = &Traits{HasNoVisibleOwner: true, IsStandard: false}

	h.start(win, mon1)
	h.end(win)

	assert.Equal(t, 1, h.m1.Count("MoveSizeEnd"))
}

func TestSession_CrossMonitorHandoffOnce(t *testing.T) {
	h := newHarness(t)

	h.start(win, mon1)
	h.update(mon1)
	h.update(mon2)
	h.update(mon2)
	h.update(mon2)

	assert.Equal(t, 1, h.m1.Count("ClearSelectedZones"))
	assert.Equal(t, 1, h.m1.Count("HideZoneWindow"))
	assert.Equal(t, 1, h.m2.Count("MoveSizeEnter"))
	assert.Equal(t, 1, h.m1.Count("MoveSizeEnter"))
	assert.Same(t, h.m2, h.session.ActiveWorkArea())
	assert.Len(t, h.m1.Updates, 4)
	assert.Len(t, h.m2.Updates, 4)

	h.end(win)
	assert.Equal(t, 1, h.m2.Count("MoveSizeEnd"))
	assert.Equal(t, 0, h.m1.Count("MoveSizeEnd"))
}

func TestSession_ShowZonesOnAllMonitors(t *testing.T) {
	h := newHarness(t)
	h.settings.opts.ShowZonesOnAllMonitors = true

	h.start(win, mon1)
	assert.Equal(t, 1, h.m2.Count("ShowZoneWindow"))
	assert.Equal(t, 0, h.m1.Count("ShowZoneWindow"), "entered area is not shown twice")

	h.update(mon2)
	assert.Equal(t, 1, h.m1.Count("ClearSelectedZones"))
	assert.Equal(t, 0, h.m1.Count("HideZoneWindow"), "old area keeps its overlay")
	assert.Equal(t, 1, h.m2.Count("MoveSizeEnter"))
}

func TestSession_ResetAfterEnd(t *testing.T) {
	h := newHarness(t)
	h.start(win, mon1)
	h.session.SecondaryClick()
	h.end(win)

	assert.False(t, h.session.InDragging())
	assert.False(t, h.session.DragEnabled())
	assert.False(t, h.session.SecondaryToggle())
	assert.Nil(t, h.session.ActiveWorkArea())
	assert.Zero(t, h.session.DraggedWindow())

	const other zone.WindowID = 200
	h.m2.Reset()
	h.start(other, mon2)
	assert.True(t, h.session.DragEnabled(), "toggle from the previous drag is gone")
	assert.Same(t, h.m2, h.session.ActiveWorkArea())
	assert.Equal(t, 1, h.m2.Count("MoveSizeEnter(200)"))
}

func TestSession_EndForOtherWindowIgnored(t *testing.T) {
	h := newHarness(t)
	h.start(win, mon1)
	h.end(win + 1)

	assert.True(t, h.session.InDragging())
	assert.Equal(t, 0, h.m1.Count("MoveSizeEnd"))
	assert.Equal(t, 0, h.m1.Count("HideZoneWindow"))
}

func TestSession_StartForSecondWindowIgnoredWhileDragging(t *testing.T) {
	h := newHarness(t)
	h.start(win, mon1)
	h.start(win+1, mon2)

	assert.Equal(t, win, h.session.DraggedWindow())
	assert.Equal(t, 0, h.m2.Count("MoveSizeEnter"))
}

func TestSession_ToggleMidDragReenters(t *testing.T) {
	h := newHarness(t)
	h.hooks.shift = true

	h.start(win, mon1)
	require.True(t, h.session.InDragging())
	assert.False(t, h.session.DragEnabled())
	assert.Nil(t, h.session.ActiveWorkArea())
	assert.Equal(t, 0, h.m1.Count("MoveSizeEnter"))

	h.hooks.shift = false
	h.update(mon1)
	assert.Equal(t, 1, h.m1.Count("MoveSizeEnter"))
	assert.Len(t, h.m1.Updates, 1, "update is re-issued once after re-entering")
	assert.Len(t, h.m2.Updates, 1)

	h.update(mon1)
	assert.Equal(t, 1, h.m1.Count("MoveSizeEnter"))
	assert.Len(t, h.m1.Updates, 2)
}

func TestSession_DisabledMidDragDetaches(t *testing.T) {
	h := newHarness(t)
	h.settings.opts.MakeDraggedWindowTransparent = true
	h.transparency.current[win] = Opacity{Value: 0xCCCCCCCC, Set: true}

	h.start(win, mon1)
	assert.Equal(t, DraggedOpacity, h.transparency.current[win])

	h.hooks.shift = true
	h.update(mon1)

	assert.Nil(t, h.session.ActiveWorkArea())
	assert.True(t, h.session.InDragging())
	assert.Equal(t, Opacity{Value: 0xCCCCCCCC, Set: true}, h.transparency.current[win])
	assert.Equal(t, 1, h.m1.Count("HideZoneWindow"))
	assert.Equal(t, 1, h.m2.Count("HideZoneWindow"))
	assert.Empty(t, h.m1.Updates)

	h.end(win)
	assert.Equal(t, 0, h.m1.Count("MoveSizeEnd"))
}

func TestSession_SecondaryClickFlipsDrag(t *testing.T) {
	h := newHarness(t)
	h.settings.opts.MouseSwitch = true

	h.session.SecondaryClick()
	assert.False(t, h.session.SecondaryToggle(), "ignored while idle")
	assert.Equal(t, 0, h.keyUpdates)

	h.start(win, mon1)
	h.session.SecondaryClick()
	assert.True(t, h.session.SecondaryToggle())
	assert.Equal(t, 1, h.keyUpdates)

	h.update(mon1)
	assert.False(t, h.session.DragEnabled())
	assert.Nil(t, h.session.ActiveWorkArea())
}

func TestSession_ElevatedWindowBlocksDragAndWarnsOnce(t *testing.T) {
	h := newHarness(t)
	h.inspector.elevated[win] = true

	h.start(win, mon1)
	assert.True(t, h.session.InDragging())
	assert.False(t, h.session.DragEnabled())
	assert.Equal(t, 0, h.m1.Count("MoveSizeEnter"))
	assert.Equal(t, 1, h.notifier.sent)

	// The toggle re-entry stops because the guard disables the drag again.
	h.update(mon1)
	assert.Equal(t, 0, h.m1.Count("MoveSizeEnter"))
	assert.Empty(t, h.m1.Updates)

	h.end(win)
	h.start(win, mon1)
	h.end(win)
	assert.Equal(t, 1, h.notifier.sent, "advisory is shown once per process")
}

func TestSession_ElevationBlockedReportedOncePerDrag(t *testing.T) {
	h := newHarness(t)
	h.inspector.elevated[win] = true

	h.start(win, mon1)
	for i := 0; i < 10; i++ {
		h.update(mon1)
	}
	assert.Equal(t, 1, countEvents(h.observer.events, EventElevationBlocked))

	h.end(win)
	h.start(win, mon1)
	h.update(mon1)
	assert.Equal(t, 2, countEvents(h.observer.events, EventElevationBlocked), "a new drag reports again")
}

func countEvents(events []Event, want Event) int {
	n := 0
	for _, e := range events {
		if e == want {
			n++
		}
	}
	return n
}

func TestSession_ElevationWarningSuppressed(t *testing.T) {
	h := newHarness(t)
	h.inspector.elevated[win] = true
	h.settings.opts.ElevatedWarningDisabled = true

	h.start(win, mon1)
	assert.False(t, h.session.DragEnabled())
	assert.Equal(t, 0, h.notifier.sent)
}

func TestSession_ElevatedDaemonMayDragElevatedWindow(t *testing.T) {
	h := newHarness(t)
	h.inspector.elevated[win] = true
	h.inspector.processElevated = true

	h.start(win, mon1)
	assert.True(t, h.session.DragEnabled())
	assert.Equal(t, 0, h.notifier.sent)
}

func TestSession_UnzonedDropRestoresSize(t *testing.T) {
	tests := []struct {
		name         string
		restoreSize  bool
		resizeCursor bool
		maximized    bool
		wantRestored bool
		wantForgot   bool
	}{
		{"restores", true, false, false, true, false},
		{"resize cursor forgets", true, true, false, false, true},
		{"maximized keeps", true, false, true, false, false},
		{"setting off", false, false, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.settings.opts.RestoreSize = tt.restoreSize
			h.hooks.shift = true // zoning disabled for the whole drag
			h.inspector.monitors[win] = mon2

			h.start(win, mon1)
			h.inspector.resizeCursor = tt.resizeCursor
			h.inspector.maximized[win] = tt.maximized
			h.end(win)

			assert.Equal(t, tt.wantRestored, len(h.sizes.restored) == 1)
			assert.Equal(t, tt.wantForgot, len(h.sizes.forgot) == 1)
			require.Len(t, h.history.removed, 1)
			assert.Equal(t, removal{win, "m2", h.m2.Zones.SetID}, h.history.removed[0])
			assert.Equal(t, []zone.WindowID{win}, h.history.cleared)
		})
	}
}

func TestSession_UnzonedDropWithoutLayout(t *testing.T) {
	h := newHarness(t)
	h.hooks.shift = true
	h.m1.Zones = nil
	h.inspector.monitors[win] = mon1
	h.sizes.err = errors.New("no saved size")
	h.settings.opts.RestoreSize = true

	h.start(win, mon1)
	h.end(win)

	assert.Empty(t, h.history.removed)
	assert.Equal(t, []zone.WindowID{win}, h.history.cleared)
	assert.False(t, h.session.InDragging())
}

func TestSession_MissingWorkAreaPassesThrough(t *testing.T) {
	h := newHarness(t)
	const mon3 zone.MonitorID = 3

	h.start(win, mon3)
	assert.True(t, h.session.InDragging())
	assert.Nil(t, h.session.ActiveWorkArea())

	h.update(mon3)
	assert.Nil(t, h.session.ActiveWorkArea())
	assert.Empty(t, h.m1.Updates)

	h.end(win)
	assert.False(t, h.session.InDragging())
	assert.Contains(t, h.observer.events, EventPassThrough)
}

func TestSession_PlacementPassThroughs(t *testing.T) {
	h := newHarness(t)
	h.start(win, mon1)

	h.session.MoveWindowIntoZoneByIndexSet(win, zone.ZoneIndexSet{0}, h.m2, false)
	assert.Equal(t, 0, h.m2.Count("MoveWindowIntoZoneByIndexSet"), "dragged window is skipped")

	h.session.MoveWindowIntoZoneByIndexSet(win+1, zone.ZoneIndexSet{0, 1}, h.m2, false)
	assert.Equal(t, []string{"MoveWindowIntoZoneByIndexSet(101,[0 1])"}, h.m2.Calls)

	assert.True(t, h.session.MoveWindowIntoZoneByDirectionAndIndex(win, zone.DirLeft, true, h.m2))
	assert.True(t, h.session.MoveWindowIntoZoneByDirectionAndPosition(win, zone.DirUp, false, h.m2))
	assert.True(t, h.session.ExtendWindowByDirectionAndPosition(win, zone.DirDown, h.m2))

	assert.False(t, h.session.MoveWindowIntoZoneByDirectionAndIndex(win, zone.DirLeft, true, nil))
	assert.False(t, h.session.MoveWindowIntoZoneByDirectionAndPosition(win, zone.DirUp, false, nil))
	assert.False(t, h.session.ExtendWindowByDirectionAndPosition(win, zone.DirDown, nil))
	h.session.MoveWindowIntoZoneByIndexSet(win+1, zone.ZoneIndexSet{0}, nil, false)
}
