package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/1broseidon/snapzone/internal/layout"
	"github.com/1broseidon/snapzone/internal/movesize"
	"github.com/1broseidon/snapzone/internal/settings"
	"github.com/1broseidon/snapzone/internal/workarea"
	"github.com/1broseidon/snapzone/internal/x11"
	"github.com/1broseidon/snapzone/internal/zone"
)

// reconcileInterval is how often desktops and monitors are re-read.
const reconcileInterval = 500 * time.Millisecond

// Backend is the window system as seen by the tracker.
type Backend interface {
	workarea.MonitorLocator
	workarea.WindowMover
	RefreshMonitors() ([]x11.Monitor, error)
	Desktops() ([]x11.Desktop, error)
	CurrentDesktop(desktops []x11.Desktop) (x11.Desktop, bool)
	Pointer() (x11.PointerState, error)
	ActiveWindow() zone.WindowID
	ClientWindows() ([]zone.WindowID, error)
}

// Gauges receives topology sizes, typically for metrics.
type Gauges interface {
	SetTopology(desktops, monitors, workAreas int)
	ObservePlacement(kind string, ok bool)
}

// Config holds configuration for the tracker.
type Config struct {
	Backend      Backend
	Settings     *settings.Store
	Inspector    movesize.WindowInspector
	Transparency movesize.Transparency
	Sizes        movesize.SizeRestorer
	Notifier     movesize.Notifier
	Observer     movesize.Observer
	History      *workarea.History
	// NewOverlay returns the overlay of a new work area. Optional.
	NewOverlay func() workarea.Overlay
	Gauges     Gauges
	Logger     *slog.Logger
}

// Tracker owns the work-area registry and the drag session and drives them
// from polled pointer state. All state is confined to the loop goroutine.
type Tracker struct {
	backend    Backend
	inspector  movesize.WindowInspector
	store      *settings.Store
	history    *workarea.History
	newOverlay func() workarea.Overlay
	gauges     Gauges
	logger     *slog.Logger

	loop     *Loop
	registry *workarea.Registry
	session  *movesize.Session
	input    *Input
	detector Detector

	desktops      []x11.Desktop
	current       x11.Desktop
	monitors      []x11.Monitor
	topology      string
	areas         map[string]AreaInfo
	overlays      map[string]workarea.Overlay
	lastReconcile time.Time
	last          x11.PointerState
}

// New creates a tracker. Run starts it.
func New(cfg Config) (*Tracker, error) {
	if cfg.Backend == nil || cfg.Settings == nil || cfg.Inspector == nil || cfg.Sizes == nil {
		return nil, fmt.Errorf("tracker: backend, settings, inspector and size restorer are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	history := cfg.History
	if history == nil {
		history = workarea.NewHistory(nil)
	}

	t := &Tracker{
		backend:    cfg.Backend,
		inspector:  cfg.Inspector,
		store:      cfg.Settings,
		history:    history,
		newOverlay: cfg.NewOverlay,
		gauges:     cfg.Gauges,
		logger:     logger,
		loop:       NewLoop(logger),
		registry:   workarea.NewRegistry(cfg.Backend),
		input:      &Input{},
		areas:      make(map[string]AreaInfo),
		overlays:   make(map[string]workarea.Overlay),
	}
	t.session = movesize.New(movesize.Config{
		Settings:     cfg.Settings,
		Inspector:    spanAwareInspector{WindowInspector: cfg.Inspector, tracker: t},
		Transparency: cfg.Transparency,
		Sizes:        cfg.Sizes,
		Hooks:        t.input,
		Notifier:     cfg.Notifier,
		History:      history,
		Observer:     cfg.Observer,
		Logger:       logger,
		OnKeyUpdate:  t.rerunUpdate,
	})
	return t, nil
}

// Run polls and reconciles until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context) {
	t.logger.Info("tracker started", "poll_interval", t.store.Current().PollInterval())
	t.reconcile()
	t.loop.Run(ctx, t.store.Current().PollInterval(), t.tick)
	t.shutdown()
	t.logger.Info("tracker stopped")
}

func (t *Tracker) tick() {
	if time.Since(t.lastReconcile) >= reconcileInterval && !t.detector.Dragging() {
		t.reconcile()
	}

	p, err := t.backend.Pointer()
	if err != nil {
		// Pointer left the screen; a drag in progress resumes when it returns.
		t.logger.Debug("pointer unavailable", "error", err)
		return
	}
	secondary, modifiersChanged := t.input.Sample(p)
	moved := p.Position != t.last.Position
	t.last = p

	s := Sample{ButtonDown: p.Button1()}
	if s.ButtonDown && t.detector.NeedsWindow() {
		s.Active = t.backend.ActiveWindow()
		if s.Active != 0 {
			r, err := t.backend.WindowRect(s.Active)
			s.Rect, s.RectOK = r, err == nil
		}
	}

	action, window := t.detector.Step(s)
	switch action {
	case ActionStart:
		t.logger.Debug("window move started", "window_id", window)
		t.session.MoveSizeStart(window, t.monitorAt(p.Position), p.Position, t.workAreas())
	case ActionUpdate:
		if secondary {
			t.session.SecondaryClick()
		}
		if moved || modifiersChanged {
			t.session.MoveSizeUpdate(t.monitorAt(p.Position), p.Position, t.workAreas())
		}
	case ActionEnd:
		t.logger.Debug("window move ended", "window_id", window)
		t.session.MoveSizeEnd(window, p.Position, t.workAreas())
	}
}

// rerunUpdate repeats the last update after the secondary toggle flipped.
func (t *Tracker) rerunUpdate() {
	if !t.detector.Dragging() {
		return
	}
	pt := t.last.Position
	t.session.MoveSizeUpdate(t.monitorAt(pt), pt, t.workAreas())
}

func (t *Tracker) spanning() bool {
	return t.store.Current().SpanZonesAcrossMonitors
}

func (t *Tracker) monitorAt(pt zone.Point) zone.MonitorID {
	if t.spanning() {
		return zone.AllMonitors
	}
	id, ok := t.backend.MonitorFromPoint(pt)
	if !ok {
		return zone.AllMonitors
	}
	return id
}

func (t *Tracker) workAreas() map[zone.MonitorID]zone.WorkArea {
	return t.registry.WorkAreasForDesktop(t.current.ID)
}

// reconcile re-reads desktops and monitors and brings the registry in line.
// A change of monitor geometry, layouts or spanning rebuilds every work area.
func (t *Tracker) reconcile() {
	t.lastReconcile = time.Now()

	monitors, err := t.backend.RefreshMonitors()
	if err != nil {
		t.logger.Error("failed to read monitors", "error", err)
		return
	}
	desktops, err := t.backend.Desktops()
	if err != nil {
		t.logger.Error("failed to read desktops", "error", err)
		return
	}
	current, _ := t.backend.CurrentDesktop(desktops)
	if current.ID != t.current.ID && t.current.Name != "" {
		t.logger.Debug("desktop switched", "desktop", current.Name)
	}
	t.desktops, t.current, t.monitors = desktops, current, monitors

	s := t.store.Current()
	if topo := topologyKey(monitors, s); topo != t.topology {
		if t.topology != "" {
			t.logger.Info("monitor layout changed, rebuilding work areas", "monitors", len(monitors))
		}
		t.registry.Clear()
		for id := range t.areas {
			delete(t.areas, id)
		}
		t.topology = topo
	}

	ids := make([]zone.DesktopID, len(desktops))
	for i, d := range desktops {
		ids[i] = d.ID
	}
	t.registry.RegisterUpdates(ids)
	t.pruneAreas(ids)

	for _, d := range desktops {
		if s.SpanZonesAcrossMonitors {
			t.addArea(s, d, zone.AllMonitors, "all", x11.Union(monitors), s.DefaultLayout)
			continue
		}
		for _, m := range monitors {
			t.addArea(s, d, m.ID, m.Name, m.WorkArea, s.LayoutFor(m.Name))
		}
	}
	t.releaseOverlays()
	t.pruneHistory()

	if t.gauges != nil {
		t.gauges.SetTopology(len(desktops), len(monitors), len(t.areas))
	}
}

func (t *Tracker) addArea(s *settings.Settings, d x11.Desktop, monitor zone.MonitorID, monitorName string, bounds zone.Rect, spec layout.Spec) {
	if !t.registry.IsNewWorkArea(d.ID, monitor) {
		return
	}
	id := areaID(d, monitorName)
	var overlay workarea.Overlay
	if existing, ok := t.overlays[id]; ok {
		overlay = existing
	} else if t.newOverlay != nil {
		overlay = t.newOverlay()
		t.overlays[id] = overlay
	}

	wa, err := workarea.NewGridArea(workarea.GridConfig{
		ID:        id,
		Bounds:    bounds,
		Layout:    spec,
		Colors:    s.Colors(),
		Algorithm: s.Algorithm(),
		Mover:     t.backend,
		Overlay:   overlay,
		History:   t.history,
		Logger:    t.logger,
	})
	if err != nil {
		// The desktop keeps no work area on this monitor; drags there pass through.
		t.logger.Warn("failed to create work area", "area", id, "error", err)
		return
	}
	t.registry.AddWorkArea(d.ID, monitor, wa)
	t.areas[id] = AreaInfo{
		ID:           id,
		Desktop:      d.Name,
		DesktopIndex: d.Index,
		Monitor:      monitorName,
		MonitorID:    monitor,
		Bounds:       bounds,
		Layout:       wa.Layout(),
		Zones:        wa.ZoneSet().Zones(),
		desktop:      d.ID,
	}
	t.logger.Debug("work area created", "area", id, "layout", spec.Type, "zones", spec.ZoneCount)
}

func (t *Tracker) pruneAreas(active []zone.DesktopID) {
	keep := make(map[zone.DesktopID]bool, len(active))
	for _, id := range active {
		keep[id] = true
	}
	for id, info := range t.areas {
		if !keep[info.desktop] {
			delete(t.areas, id)
		}
	}
}

// pruneHistory forgets windows that are no longer managed.
func (t *Tracker) pruneHistory() {
	clients, err := t.backend.ClientWindows()
	if err != nil {
		t.logger.Debug("failed to read client windows", "error", err)
		return
	}
	alive := make(map[zone.WindowID]bool, len(clients))
	for _, w := range clients {
		alive[w] = true
	}
	for _, w := range t.history.Windows() {
		if !alive[w] {
			t.history.Forget(w)
		}
	}
}

// releaseOverlays destroys overlays whose work area no longer exists.
func (t *Tracker) releaseOverlays() {
	for id, o := range t.overlays {
		if _, ok := t.areas[id]; ok {
			continue
		}
		destroyOverlay(o)
		delete(t.overlays, id)
	}
}

func (t *Tracker) shutdown() {
	if t.detector.Dragging() {
		t.session.MoveSizeEnd(t.detector.Window(), t.last.Position, t.workAreas())
		t.detector.Cancel()
	}
	for id, o := range t.overlays {
		destroyOverlay(o)
		delete(t.overlays, id)
	}
}

func destroyOverlay(o workarea.Overlay) {
	o.Hide()
	if d, ok := o.(interface{ Destroy() }); ok {
		d.Destroy()
	}
}

func areaID(d x11.Desktop, monitorName string) string {
	return d.ID.String() + "/" + monitorName
}

func topologyKey(monitors []x11.Monitor, s *settings.Settings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "span=%t default=%v;", s.SpanZonesAcrossMonitors, s.DefaultLayout)
	for _, m := range monitors {
		fmt.Fprintf(&b, "%d:%s:%v:%v;", m.ID, m.Name, m.WorkArea, s.LayoutFor(m.Name))
	}
	return b.String()
}

// spanAwareInspector resolves windows to the spanning work area while zones
// span all monitors.
type spanAwareInspector struct {
	movesize.WindowInspector
	tracker *Tracker
}

func (i spanAwareInspector) MonitorFromWindow(window zone.WindowID) (zone.MonitorID, bool) {
	if i.tracker.spanning() {
		return zone.AllMonitors, true
	}
	return i.WindowInspector.MonitorFromWindow(window)
}

// sortedAreas returns the work areas ordered by desktop and monitor.
func (t *Tracker) sortedAreas() []AreaInfo {
	out := make([]AreaInfo, 0, len(t.areas))
	for _, info := range t.areas {
		info.Current = info.desktop == t.current.ID
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DesktopIndex != out[j].DesktopIndex {
			return out[i].DesktopIndex < out[j].DesktopIndex
		}
		return out[i].MonitorID < out[j].MonitorID
	})
	return out
}
