package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDesktopID_StableForSameInput(t *testing.T) {
	a := NewDesktopID(0, "main")
	b := NewDesktopID(0, "main")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, NewDesktopID(1, "main"))
	assert.NotEqual(t, a, NewDesktopID(0, "work"))
}

func TestRect_Contains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 100, Height: 50}

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"top-left corner", Point{10, 10}, true},
		{"inside", Point{50, 30}, true},
		{"right edge exclusive", Point{110, 30}, false},
		{"bottom edge exclusive", Point{50, 60}, false},
		{"left of rect", Point{9, 30}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Contains(tt.p))
		})
	}
}

func TestRect_Union(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	b := Rect{X: 50, Y: 80, Width: 100, Height: 100}
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 150, Height: 180}, a.Union(b))
}

func TestParseOverlappingAlgorithm(t *testing.T) {
	alg, err := ParseOverlappingAlgorithm("")
	require.NoError(t, err)
	assert.Equal(t, OverlapSmallest, alg)

	alg, err = ParseOverlappingAlgorithm("positional")
	require.NoError(t, err)
	assert.Equal(t, OverlapPositional, alg)

	_, err = ParseOverlappingAlgorithm("biggest")
	assert.Error(t, err)
}

func TestParseDirection(t *testing.T) {
	for _, d := range []Direction{DirLeft, DirRight, DirUp, DirDown} {
		got, err := ParseDirection(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}
	_, err := ParseDirection("sideways")
	assert.Error(t, err)
}
