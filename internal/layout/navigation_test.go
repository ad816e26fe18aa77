package layout

import (
	"reflect"
	"testing"

	"github.com/1broseidon/snapzone/internal/zone"
)

// 2x2 grid
// [0] [1]
// [2] [3]
var quad = []zone.Rect{
	{X: 0, Y: 0, Width: 500, Height: 500},
	{X: 500, Y: 0, Width: 500, Height: 500},
	{X: 0, Y: 500, Width: 500, Height: 500},
	{X: 500, Y: 500, Width: 500, Height: 500},
}

func TestNextIndex(t *testing.T) {
	tests := []struct {
		name    string
		current int
		dir     zone.Direction
		cycle   bool
		want    int
		wantOK  bool
	}{
		{"right from 0", 0, zone.DirRight, false, 1, true},
		{"right at end without cycle", 2, zone.DirRight, false, 2, false},
		{"right at end with cycle", 2, zone.DirRight, true, 0, true},
		{"left from no zone", -1, zone.DirLeft, false, 2, true},
		{"right from no zone", -1, zone.DirRight, false, 0, true},
		{"left wrap", 0, zone.DirLeft, true, 2, true},
		{"up is not an index direction", 1, zone.DirUp, true, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NextIndex(3, tt.current, tt.dir, tt.cycle)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("NextIndex(3, %d, %s, %v) = (%d, %v), want (%d, %v)",
					tt.current, tt.dir, tt.cycle, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if _, ok := NextIndex(0, 0, zone.DirRight, true); ok {
		t.Error("NextIndex with no zones should fail")
	}
}

func TestNeighbor(t *testing.T) {
	tests := []struct {
		name   string
		from   int
		dir    zone.Direction
		cycle  bool
		want   int
		wantOK bool
	}{
		{"right from 0", 0, zone.DirRight, false, 1, true},
		{"down from 0", 0, zone.DirDown, false, 2, true},
		{"up from 3", 3, zone.DirUp, false, 1, true},
		{"left from 0 without cycle", 0, zone.DirLeft, false, -1, false},
		{"left from 0 wraps to same row", 0, zone.DirLeft, true, 1, true},
		{"down from 3 wraps to same column", 3, zone.DirDown, true, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Neighbor(quad, quad[tt.from], zone.ZoneIndexSet{tt.from}, tt.dir, tt.cycle)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Neighbor(from %d, %s, %v) = (%d, %v), want (%d, %v)",
					tt.from, tt.dir, tt.cycle, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestExtend(t *testing.T) {
	set, ok := Extend(quad, zone.ZoneIndexSet{0}, quad[0], zone.DirRight)
	if !ok || !reflect.DeepEqual(set, zone.ZoneIndexSet{0, 1}) {
		t.Fatalf("Extend right = %v, %v; want [0 1]", set, ok)
	}

	bounds, _ := Bounds(quad, set)
	set, ok = Extend(quad, set, bounds, zone.DirDown)
	if !ok || !reflect.DeepEqual(set, zone.ZoneIndexSet{0, 1, 2, 3}) {
		t.Fatalf("Extend down = %v, %v; want [0 1 2 3]", set, ok)
	}

	if _, ok := Extend(quad, zone.ZoneIndexSet{1}, quad[1], zone.DirRight); ok {
		t.Error("Extend past the right edge should fail")
	}
}

func TestClosest(t *testing.T) {
	if got := Closest(quad, zone.Point{X: 900, Y: 100}); got != 1 {
		t.Errorf("Closest = %d, want 1", got)
	}
	if got := Closest(nil, zone.Point{}); got != -1 {
		t.Errorf("Closest(nil) = %d, want -1", got)
	}
}
