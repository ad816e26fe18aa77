package x11

import (
	"fmt"
	"strings"

	"github.com/1broseidon/snapzone/internal/zone"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Desktop is one EWMH virtual desktop.
type Desktop struct {
	Index int
	Name  string
	ID    zone.DesktopID
}

// GetCurrentDesktop returns the current virtual desktop number (0-indexed).
// Uses _NET_CURRENT_DESKTOP atom. Returns 0 with an error if detection fails.
func (c *Connection) GetCurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// GetDesktopCount returns the number of virtual desktops.
func (c *Connection) GetDesktopCount() (int, error) {
	count, err := ewmh.NumberOfDesktopsGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get desktop count: %w", err)
	}
	return int(count), nil
}

// Desktops returns every virtual desktop with its identity. Window managers
// without _NET_DESKTOP_NAMES get positional names.
func (c *Connection) Desktops() ([]Desktop, error) {
	count, err := c.GetDesktopCount()
	if err != nil {
		return nil, err
	}
	names, err := ewmh.DesktopNamesGet(c.XUtil)
	if err != nil {
		names = nil
	}
	return DesktopsFromNames(count, names), nil
}

// DesktopsFromNames builds count desktops, naming each from names when present.
func DesktopsFromNames(count int, names []string) []Desktop {
	if count < 1 {
		// A WM without virtual desktops still has one screen to zone.
		count = 1
	}
	desktops := make([]Desktop, count)
	for i := range desktops {
		name := ""
		if i < len(names) {
			name = strings.TrimSpace(names[i])
		}
		if name == "" {
			name = fmt.Sprintf("Desktop %d", i+1)
		}
		desktops[i] = Desktop{Index: i, Name: name, ID: zone.NewDesktopID(i, name)}
	}
	return desktops
}
