package x11

import (
	"fmt"

	"github.com/1broseidon/snapzone/internal/zone"
	"github.com/BurntSushi/xgb/xproto"
)

// PointerState is the pointer position and the key/button mask at one instant.
type PointerState struct {
	Position zone.Point
	Mask     uint16
}

func (p PointerState) Shift() bool   { return p.Mask&xproto.ModMaskShift != 0 }
func (p PointerState) Ctrl() bool    { return p.Mask&xproto.ModMaskControl != 0 }
func (p PointerState) Button1() bool { return p.Mask&xproto.KeyButMaskButton1 != 0 }
func (p PointerState) Button3() bool { return p.Mask&xproto.KeyButMaskButton3 != 0 }

// QueryPointer returns the pointer state relative to the root window.
func (c *Connection) QueryPointer() (PointerState, error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return PointerState{}, fmt.Errorf("failed to query pointer: %w", err)
	}
	if !reply.SameScreen {
		return PointerState{}, ErrPointerUnavailable
	}
	return PointerState{
		Position: zone.Point{X: int(reply.RootX), Y: int(reply.RootY)},
		Mask:     reply.Mask,
	}, nil
}
