package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xfixes"
)

// resizeCursorNames covers the X core cursor font names and the
// freedesktop cursor-spec names themes use for edge and corner resizing.
var resizeCursorNames = map[string]struct{}{
	"size_ver":            {},
	"size_hor":            {},
	"size_bdiag":          {},
	"size_fdiag":          {},
	"sb_v_double_arrow":   {},
	"sb_h_double_arrow":   {},
	"ns-resize":           {},
	"ew-resize":           {},
	"nesw-resize":         {},
	"nwse-resize":         {},
	"n-resize":            {},
	"s-resize":            {},
	"e-resize":            {},
	"w-resize":            {},
	"ne-resize":           {},
	"nw-resize":           {},
	"se-resize":           {},
	"sw-resize":           {},
	"row-resize":          {},
	"col-resize":          {},
	"top_side":            {},
	"bottom_side":         {},
	"left_side":           {},
	"right_side":          {},
	"top_left_corner":     {},
	"top_right_corner":    {},
	"bottom_left_corner":  {},
	"bottom_right_corner": {},
}

// IsResizeCursorName reports whether name is a resize cursor glyph.
func IsResizeCursorName(name string) bool {
	_, ok := resizeCursorNames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// CursorName returns the name of the cursor currently shown. Cursors set
// without a name (for example raw pixmaps) yield "".
func (c *Connection) CursorName() (string, error) {
	if !c.xfixes {
		return "", ErrNoCursorNames
	}
	reply, err := xfixes.GetCursorImageAndName(c.XUtil.Conn()).Reply()
	if err != nil {
		return "", fmt.Errorf("failed to query cursor: %w", err)
	}
	return reply.Name, nil
}
