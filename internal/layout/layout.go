package layout

import (
	"fmt"
	"math"

	"github.com/1broseidon/snapzone/internal/zone"
)

// Type names a zone layout template.
type Type string

const (
	TypeGrid         Type = "grid"
	TypeColumns      Type = "columns"
	TypeRows         Type = "rows"
	TypePriorityGrid Type = "priority-grid"
	TypeFocus        Type = "focus"
)

// focusStep is the offset between cascaded focus zones.
const focusStep = 50

// Spec describes a layout template applied to a work area.
type Spec struct {
	Type      Type `yaml:"type" json:"type"`
	ZoneCount int  `yaml:"zone_count" json:"zone_count"`
	Spacing   int  `yaml:"spacing" json:"spacing"`
}

// Validate checks that the template can produce zones.
func (s Spec) Validate() error {
	switch s.Type {
	case TypeGrid, TypeColumns, TypeRows, TypePriorityGrid, TypeFocus:
	default:
		return fmt.Errorf("unknown layout type %q", s.Type)
	}
	if s.ZoneCount < 1 {
		return fmt.Errorf("zone_count must be >= 1 (got %d)", s.ZoneCount)
	}
	if s.Spacing < 0 {
		return fmt.Errorf("spacing must be >= 0 (got %d)", s.Spacing)
	}
	return nil
}

// CalculateGrid determines grid dimensions for n zones, favouring columns.
func CalculateGrid(n int) (rows, cols int) {
	if n <= 0 {
		return 0, 0
	}
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	rows = int(math.Ceil(float64(n) / float64(cols)))
	return rows, cols
}

// Zones computes the zone rectangles of spec inside area.
func Zones(spec Spec, area zone.Rect) ([]zone.Rect, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	var zones []zone.Rect
	switch spec.Type {
	case TypeGrid:
		rows, cols := CalculateGrid(spec.ZoneCount)
		zones = grid(spec.ZoneCount, rows, cols, area, spec.Spacing)
	case TypeColumns:
		zones = grid(spec.ZoneCount, 1, spec.ZoneCount, area, spec.Spacing)
	case TypeRows:
		zones = grid(spec.ZoneCount, spec.ZoneCount, 1, area, spec.Spacing)
	case TypePriorityGrid:
		zones = priorityGrid(spec.ZoneCount, area, spec.Spacing)
	case TypeFocus:
		zones = focus(spec.ZoneCount, area)
	}

	for i, z := range zones {
		if z.Width <= 0 || z.Height <= 0 {
			return nil, fmt.Errorf(
				"insufficient space for %s layout: area=%dx%d zones=%d spacing=%d (zone %d is %dx%d)",
				spec.Type, area.Width, area.Height, spec.ZoneCount, spec.Spacing, i, z.Width, z.Height,
			)
		}
	}
	return zones, nil
}

// grid lays out n zones row-major. A short last row stretches to fill the width.
func grid(n, rows, cols int, area zone.Rect, gap int) []zone.Rect {
	cellHeight := (area.Height - (rows+1)*gap) / rows

	zones := make([]zone.Rect, 0, n)
	for row := 0; row < rows; row++ {
		inRow := cols
		if remaining := n - row*cols; remaining < cols {
			inRow = remaining
		}
		if inRow <= 0 {
			break
		}
		cellWidth := (area.Width - (inRow+1)*gap) / inRow
		for col := 0; col < inRow; col++ {
			zones = append(zones, zone.Rect{
				X:      area.X + gap + col*(cellWidth+gap),
				Y:      area.Y + gap + row*(cellHeight+gap),
				Width:  cellWidth,
				Height: cellHeight,
			})
		}
	}
	return zones
}

// priorityGrid gives the first zone the left half and stacks the rest on the right.
func priorityGrid(n int, area zone.Rect, gap int) []zone.Rect {
	if n == 1 {
		return grid(1, 1, 1, area, gap)
	}

	primaryWidth := area.Width/2 - gap
	zones := []zone.Rect{{
		X:      area.X + gap,
		Y:      area.Y + gap,
		Width:  primaryWidth,
		Height: area.Height - 2*gap,
	}}

	right := zone.Rect{
		X:      area.X + primaryWidth + gap,
		Y:      area.Y,
		Width:  area.Width - primaryWidth - gap,
		Height: area.Height,
	}
	rest := n - 1
	cols := 1
	if rest > 3 {
		cols = 2
	}
	rows := int(math.Ceil(float64(rest) / float64(cols)))
	return append(zones, grid(rest, rows, cols, right, gap)...)
}

// focus cascades n equally sized zones from the top-left of the centre region.
func focus(n int, area zone.Rect) []zone.Rect {
	width := area.Width * 6 / 10
	height := area.Height * 6 / 10
	x := area.X + area.Width/5
	y := area.Y + area.Height/5

	zones := make([]zone.Rect, n)
	for i := range zones {
		zones[i] = zone.Rect{X: x + i*focusStep, Y: y + i*focusStep, Width: width, Height: height}
	}
	return zones
}

// ZonesAt returns the indices of every zone containing pt.
func ZonesAt(zones []zone.Rect, pt zone.Point) []int {
	var hits []int
	for i, z := range zones {
		if z.Contains(pt) {
			hits = append(hits, i)
		}
	}
	return hits
}

// Pick selects the zone under pt, resolving overlaps with alg.
// It returns -1 when no zone contains pt.
func Pick(zones []zone.Rect, pt zone.Point, alg zone.OverlappingAlgorithm) int {
	hits := ZonesAt(zones, pt)
	if len(hits) == 0 {
		return -1
	}

	best := hits[0]
	for _, idx := range hits[1:] {
		switch alg {
		case zone.OverlapLargest:
			if zones[idx].Area() > zones[best].Area() {
				best = idx
			}
		case zone.OverlapPositional:
			if distance(zones[idx].Center(), pt) < distance(zones[best].Center(), pt) {
				best = idx
			}
		default:
			if zones[idx].Area() < zones[best].Area() {
				best = idx
			}
		}
	}
	return best
}

// Bounds returns the union of the zones named by set.
func Bounds(zones []zone.Rect, set zone.ZoneIndexSet) (zone.Rect, bool) {
	var out zone.Rect
	found := false
	for _, idx := range set {
		if idx < 0 || idx >= len(zones) {
			continue
		}
		if !found {
			out = zones[idx]
			found = true
			continue
		}
		out = out.Union(zones[idx])
	}
	return out, found
}

func distance(a, b zone.Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
