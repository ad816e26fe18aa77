package tracker

import (
	"github.com/1broseidon/snapzone/internal/movesize"
	"github.com/1broseidon/snapzone/internal/x11"
)

// Input tracks the sampled modifier and button state for a drag. It stands
// in for low-level input hooks: modifiers and the secondary button are only
// reported while the session has armed them.
type Input struct {
	mouseHook bool
	modifiers bool
	state     x11.PointerState
	button3   bool
}

var _ movesize.InputHooks = (*Input)(nil)

func (i *Input) EnableMouseHook()         { i.mouseHook = true }
func (i *Input) DisableMouseHook()        { i.mouseHook = false }
func (i *Input) EnableModifierTracking()  { i.modifiers = true }
func (i *Input) DisableModifierTracking() { i.modifiers = false }

func (i *Input) ShiftHeld() bool { return i.modifiers && i.state.Shift() }
func (i *Input) CtrlHeld() bool  { return i.modifiers && i.state.Ctrl() }

// Sample records p. It reports whether the secondary button went down since
// the previous sample while the mouse hook was armed, and whether the
// tracked modifiers changed.
func (i *Input) Sample(p x11.PointerState) (secondaryClick, modifiersChanged bool) {
	prev := i.state
	i.state = p

	pressed := p.Button3()
	secondaryClick = i.mouseHook && pressed && !i.button3
	i.button3 = pressed

	modifiersChanged = i.modifiers && (prev.Shift() != p.Shift() || prev.Ctrl() != p.Ctrl())
	return secondaryClick, modifiersChanged
}
