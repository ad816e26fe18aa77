package zone

import (
	"fmt"

	"github.com/google/uuid"
)

// desktopNamespace seeds name-based desktop identifiers.
var desktopNamespace = uuid.MustParse("6f1c8f0e-4b7a-4d0e-9a51-3c2d7e9b5a10")

// DesktopID identifies a virtual desktop.
type DesktopID uuid.UUID

// NewDesktopID derives a stable identifier for the desktop at index with the
// given name. The same (index, name) pair always yields the same ID.
func NewDesktopID(index int, name string) DesktopID {
	return DesktopID(uuid.NewSHA1(desktopNamespace, []byte(fmt.Sprintf("%d:%s", index, name))))
}

func (d DesktopID) String() string {
	return uuid.UUID(d).String()
}

// MonitorID identifies a physical monitor.
type MonitorID int

// AllMonitors is the monitor key of a work area spanning every monitor of a desktop.
const AllMonitors MonitorID = -1

// WindowID is a top-level window handle.
type WindowID uint32

// Point is a screen coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Center returns the center point of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Area returns the area of r.
func (r Rect) Area() int {
	return r.Width * r.Height
}

// Union returns the smallest rect containing both r and o.
func (r Rect) Union(o Rect) Rect {
	x1 := min(r.X, o.X)
	y1 := min(r.Y, o.Y)
	x2 := max(r.X+r.Width, o.X+o.Width)
	y2 := max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// ZoneColors configures how zone overlays are drawn.
type ZoneColors struct {
	Primary   uint32
	Border    uint32
	Highlight uint32
	Opacity   int // 0-100
}

// OverlappingAlgorithm picks a zone when several zones contain the pointer.
type OverlappingAlgorithm int

const (
	OverlapSmallest OverlappingAlgorithm = iota
	OverlapLargest
	OverlapPositional
)

func (a OverlappingAlgorithm) String() string {
	switch a {
	case OverlapSmallest:
		return "smallest"
	case OverlapLargest:
		return "largest"
	case OverlapPositional:
		return "positional"
	default:
		return "unknown"
	}
}

// ParseOverlappingAlgorithm parses the settings spelling of an algorithm.
func ParseOverlappingAlgorithm(s string) (OverlappingAlgorithm, error) {
	switch s {
	case "", "smallest":
		return OverlapSmallest, nil
	case "largest":
		return OverlapLargest, nil
	case "positional":
		return OverlapPositional, nil
	default:
		return OverlapSmallest, fmt.Errorf("unknown overlapping algorithm %q", s)
	}
}

// ZoneIndexSet lists zone indices a window occupies.
type ZoneIndexSet []int

// Direction is a keyboard placement direction.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

func (d Direction) String() string {
	switch d {
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	default:
		return "unknown"
	}
}

// ParseDirection parses "left", "right", "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "left":
		return DirLeft, nil
	case "right":
		return DirRight, nil
	case "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	default:
		return DirLeft, fmt.Errorf("unknown direction %q", s)
	}
}

// ZoneSet is the active zone layout of a work area.
type ZoneSet interface {
	ID() uuid.UUID
	Zones() []Rect
	// DismissWindow forgets the last zone the window was placed in.
	DismissWindow(window WindowID)
}

// WorkArea is one zone layout bound to a (desktop, monitor) pair.
type WorkArea interface {
	MoveSizeEnter(window WindowID)
	MoveSizeUpdate(pt Point, dragEnabled, selectManyZones bool)
	MoveSizeEnd(window WindowID, pt Point)

	ShowZoneWindow()
	HideZoneWindow()
	ClearSelectedZones()

	// ZoneSet returns nil when the work area has no active layout.
	ZoneSet() ZoneSet
	UniqueID() string

	SetZoneColors(colors ZoneColors)
	SetOverlappingZonesAlgorithm(alg OverlappingAlgorithm)

	MoveWindowIntoZoneByIndexSet(window WindowID, set ZoneIndexSet, suppressMove bool)
	MoveWindowIntoZoneByDirectionAndIndex(window WindowID, dir Direction, cycle bool) bool
	MoveWindowIntoZoneByDirectionAndPosition(window WindowID, dir Direction, cycle bool) bool
	ExtendWindowByDirectionAndPosition(window WindowID, dir Direction) bool
}
