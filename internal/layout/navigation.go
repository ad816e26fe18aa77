package layout

import (
	"sort"

	"github.com/1broseidon/snapzone/internal/zone"
)

// NextIndex steps through zones in index order. Left moves to the previous
// zone and right to the next; up and down are not index directions.
// current may be -1 when the window is in no zone. When the step leaves the
// range it wraps if cycle is set and fails otherwise.
func NextIndex(count, current int, dir zone.Direction, cycle bool) (int, bool) {
	if count <= 0 {
		return -1, false
	}

	var next int
	switch dir {
	case zone.DirRight:
		next = current + 1
	case zone.DirLeft:
		if current < 0 {
			next = count - 1
		} else {
			next = current - 1
		}
	default:
		return current, false
	}

	if next >= 0 && next < count {
		return next, true
	}
	if !cycle {
		return current, false
	}
	return (next + count) % count, true
}

// Neighbor finds the closest zone in dir from the rectangle from, ignoring
// the zones in exclude. With cycle set and nothing in that direction it wraps
// to the far edge, preferring zones on the same row or column.
func Neighbor(zones []zone.Rect, from zone.Rect, exclude zone.ZoneIndexSet, dir zone.Direction, cycle bool) (int, bool) {
	skip := make(map[int]bool, len(exclude))
	for _, idx := range exclude {
		skip[idx] = true
	}

	c := from.Center()
	bestIdx := -1
	bestDist := 0

	for i, z := range zones {
		if skip[i] {
			continue
		}
		zc := z.Center()
		if !inDirection(c, zc, dir) {
			continue
		}
		dist := distance(c, zc)
		if bestIdx == -1 || dist < bestDist {
			bestIdx = i
			bestDist = dist
		}
	}
	if bestIdx >= 0 {
		return bestIdx, true
	}
	if !cycle {
		return -1, false
	}

	bestScore := 0
	for i, z := range zones {
		if skip[i] {
			continue
		}
		zc := z.Center()
		var score int
		switch dir {
		case zone.DirUp:
			score = zc.Y*10000 - abs(zc.X-c.X)
		case zone.DirDown:
			score = -zc.Y*10000 - abs(zc.X-c.X)
		case zone.DirLeft:
			score = zc.X*10000 - abs(zc.Y-c.Y)
		case zone.DirRight:
			score = -zc.X*10000 - abs(zc.Y-c.Y)
		}
		if bestIdx == -1 || score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}
	return bestIdx, bestIdx >= 0
}

// Extend grows current by the neighbouring zone in dir. The result holds every
// zone fully covered by the combined bounds, sorted by index.
func Extend(zones []zone.Rect, current zone.ZoneIndexSet, from zone.Rect, dir zone.Direction) (zone.ZoneIndexSet, bool) {
	next, ok := Neighbor(zones, from, current, dir, false)
	if !ok {
		return current, false
	}

	bounds := from
	if cur, found := Bounds(zones, current); found {
		bounds = cur
	}
	bounds = bounds.Union(zones[next])

	var out zone.ZoneIndexSet
	for i, z := range zones {
		if covers(bounds, z) {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out, true
}

// Closest returns the zone whose centre is nearest pt, or -1 for no zones.
func Closest(zones []zone.Rect, pt zone.Point) int {
	best := -1
	bestDist := 0
	for i, z := range zones {
		d := distance(z.Center(), pt)
		if best == -1 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func inDirection(from, to zone.Point, dir zone.Direction) bool {
	switch dir {
	case zone.DirUp:
		return to.Y < from.Y
	case zone.DirDown:
		return to.Y > from.Y
	case zone.DirLeft:
		return to.X < from.X
	case zone.DirRight:
		return to.X > from.X
	}
	return false
}

func covers(outer, inner zone.Rect) bool {
	return inner.X >= outer.X && inner.Y >= outer.Y &&
		inner.X+inner.Width <= outer.X+outer.Width &&
		inner.Y+inner.Height <= outer.Y+outer.Height
}
