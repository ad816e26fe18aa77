package x11

import (
	"fmt"
	"sort"

	"github.com/1broseidon/snapzone/internal/zone"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID   zone.MonitorID
	Name string
	// Bounds is the full CRTC rectangle.
	Bounds zone.Rect
	// WorkArea is Bounds minus the struts of docks on this monitor.
	WorkArea zone.Rect
}

// Monitors retrieves all active monitors using XRandR, ordered by ID.
// Monitor IDs are CRTC indexes and stay stable while the layout does not change.
func (c *Connection) Monitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			name = string(outputInfo.Name)
		}

		bounds := zone.Rect{
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		}
		monitors = append(monitors, Monitor{
			ID:       zone.MonitorID(i),
			Name:     name,
			Bounds:   bounds,
			WorkArea: bounds,
		})
	}
	if len(monitors) == 0 {
		return nil, ErrNoMonitor
	}

	c.applyDockStruts(monitors)
	sort.Slice(monitors, func(i, j int) bool { return monitors[i].ID < monitors[j].ID })
	return monitors, nil
}

// MonitorAt returns the monitor whose bounds contain pt.
func MonitorAt(monitors []Monitor, pt zone.Point) (Monitor, bool) {
	for _, m := range monitors {
		if m.Bounds.Contains(pt) {
			return m, true
		}
	}
	return Monitor{}, false
}

// MonitorForRect returns the monitor containing the center of r, falling back
// to the monitor with the largest overlap.
func MonitorForRect(monitors []Monitor, r zone.Rect) (Monitor, bool) {
	if m, ok := MonitorAt(monitors, r.Center()); ok {
		return m, true
	}
	best, bestArea := -1, 0
	for i, m := range monitors {
		isect := intersectionSize(
			m.Bounds.X, m.Bounds.Y, m.Bounds.X+m.Bounds.Width, m.Bounds.Y+m.Bounds.Height,
			r.X, r.Y, r.X+r.Width, r.Y+r.Height,
		)
		if area := isect.w * isect.h; area > bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 {
		return Monitor{}, false
	}
	return monitors[best], true
}

// Union returns the rectangle covering the work areas of all monitors.
func Union(monitors []Monitor) zone.Rect {
	if len(monitors) == 0 {
		return zone.Rect{}
	}
	r := monitors[0].WorkArea
	for _, m := range monitors[1:] {
		r = r.Union(m.WorkArea)
	}
	return r
}

type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

func (c *Connection) applyDockStruts(monitors []Monitor) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return
	}
	rootWidth := int(rootGeom.Width)
	rootHeight := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return
	}

	var partials []*ewmh.WmStrutPartial
	for _, windowID := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
		if err != nil || !hasType(types, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			partials = append(partials, sp)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			partials = append(partials, &ewmh.WmStrutPartial{
				Left:         s.Left,
				Right:        s.Right,
				Top:          s.Top,
				Bottom:       s.Bottom,
				LeftStartY:   0,
				LeftEndY:     uint(rootHeight - 1),
				RightStartY:  0,
				RightEndY:    uint(rootHeight - 1),
				TopStartX:    0,
				TopEndX:      uint(rootWidth - 1),
				BottomStartX: 0,
				BottomEndX:   uint(rootWidth - 1),
			})
		}
	}

	for i := range monitors {
		var struts dockStruts
		for _, sp := range partials {
			updateStrutsForMonitor(monitors[i].Bounds, rootWidth, rootHeight, sp, &struts)
		}
		monitors[i].WorkArea = shrink(monitors[i].Bounds, struts)
	}
}

func shrink(r zone.Rect, s dockStruts) zone.Rect {
	r.X += s.left
	r.Y += s.top
	r.Width -= s.left + s.right
	r.Height -= s.top + s.bottom
	if r.Width < 1 {
		r.Width = 1
	}
	if r.Height < 1 {
		r.Height = 1
	}
	return r
}

func updateStrutsForMonitor(mon zone.Rect, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	monX1 := mon.X
	monY1 := mon.Y
	monX2 := mon.X + mon.Width
	monY2 := mon.Y + mon.Height

	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		isect := intersectionSize(monX1, monY1, monX2, monY2, int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top))
		acc.top = max(acc.top, isect.h)
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		isect := intersectionSize(monX1, monY1, monX2, monY2, int(sp.BottomStartX), rootHeight-int(sp.Bottom), int(sp.BottomEndX)+1, rootHeight)
		acc.bottom = max(acc.bottom, isect.h)
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		isect := intersectionSize(monX1, monY1, monX2, monY2, 0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1)
		acc.left = max(acc.left, isect.w)
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		isect := intersectionSize(monX1, monY1, monX2, monY2, rootWidth-int(sp.Right), int(sp.RightStartY), rootWidth, int(sp.RightEndY)+1)
		acc.right = max(acc.right, isect.w)
	}
}

type intersection struct {
	w int
	h int
}

func intersectionSize(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) intersection {
	x1 := max(ax1, bx1)
	y1 := max(ay1, by1)
	x2 := min(ax2, bx2)
	y2 := min(ay2, by2)

	if x2 <= x1 || y2 <= y1 {
		return intersection{}
	}
	return intersection{w: x2 - x1, h: y2 - y1}
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}
