package x11

import "errors"

var (
	ErrNoMonitor          = errors.New("no monitor found")
	ErrPointerUnavailable = errors.New("pointer is not on this screen")
	ErrNoCursorNames      = errors.New("XFixes cursor names are not supported")
)
