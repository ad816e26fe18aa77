package tracker

import "github.com/1broseidon/snapzone/internal/zone"

// dragThreshold is how far a window must move before a press becomes a drag.
const dragThreshold = 2

type phase int

const (
	phaseIdle phase = iota
	phasePressed
	phaseDragging
	// phaseIgnored waits for the button to be released after a press that
	// cannot become a drag, such as a resize.
	phaseIgnored
)

// Action is what a sample means for the drag session.
type Action int

const (
	ActionNone Action = iota
	ActionStart
	ActionUpdate
	ActionEnd
)

func (a Action) String() string {
	switch a {
	case ActionStart:
		return "start"
	case ActionUpdate:
		return "update"
	case ActionEnd:
		return "end"
	default:
		return "none"
	}
}

// Sample is one poll of the primary button and the active window.
type Sample struct {
	ButtonDown bool
	Active     zone.WindowID
	// Rect is the geometry of Active; RectOK is false when it could not be read.
	Rect   zone.Rect
	RectOK bool
}

// Detector recognizes window moves from polled samples. A move is a press
// of the primary button followed by a change in the active window's
// position with an unchanged size.
type Detector struct {
	phase  phase
	window zone.WindowID
	origin zone.Rect
}

// Window returns the window being tracked or dragged.
func (d *Detector) Window() zone.WindowID { return d.window }

// Dragging reports whether a drag is in progress.
func (d *Detector) Dragging() bool { return d.phase == phaseDragging }

// NeedsWindow reports whether the next Step needs the active window.
func (d *Detector) NeedsWindow() bool {
	return d.phase == phaseIdle || d.phase == phasePressed
}

// Step advances the detector with s.
func (d *Detector) Step(s Sample) (Action, zone.WindowID) {
	switch d.phase {
	case phaseIdle:
		if !s.ButtonDown {
			return ActionNone, 0
		}
		if s.Active == 0 || !s.RectOK {
			d.phase = phaseIgnored
			return ActionNone, 0
		}
		d.arm(s)
		return ActionNone, 0

	case phasePressed:
		if !s.ButtonDown {
			d.reset()
			return ActionNone, 0
		}
		if s.Active == 0 || !s.RectOK {
			return ActionNone, 0
		}
		// Focus often follows the click by a frame; follow it until the
		// window starts moving.
		if s.Active != d.window {
			d.arm(s)
			return ActionNone, 0
		}
		if s.Rect.Width != d.origin.Width || s.Rect.Height != d.origin.Height {
			d.phase = phaseIgnored
			return ActionNone, 0
		}
		if abs(s.Rect.X-d.origin.X) >= dragThreshold || abs(s.Rect.Y-d.origin.Y) >= dragThreshold {
			d.phase = phaseDragging
			return ActionStart, d.window
		}
		return ActionNone, 0

	case phaseDragging:
		if s.ButtonDown {
			return ActionUpdate, d.window
		}
		w := d.window
		d.reset()
		return ActionEnd, w

	case phaseIgnored:
		if !s.ButtonDown {
			d.reset()
		}
	}
	return ActionNone, 0
}

// Cancel abandons the current press or drag.
func (d *Detector) Cancel() { d.reset() }

func (d *Detector) arm(s Sample) {
	d.phase = phasePressed
	d.window = s.Active
	d.origin = s.Rect
}

func (d *Detector) reset() {
	*d = Detector{}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
