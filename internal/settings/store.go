package settings

import (
	"sync"

	"github.com/1broseidon/snapzone/internal/movesize"
)

// Store holds the current settings snapshot and is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	current *Settings
}

// NewStore creates a store holding s, or the defaults when s is nil.
func NewStore(s *Settings) *Store {
	if s == nil {
		s = DefaultSettings()
	}
	return &Store{current: s}
}

// Current returns the current snapshot. Callers must not modify it.
func (st *Store) Current() *Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current
}

// Set replaces the snapshot.
func (st *Store) Set(s *Settings) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.current = s
}

// Options returns the drag settings of the current snapshot.
func (st *Store) Options() movesize.Options {
	s := st.Current()
	return movesize.Options{
		ExcludedApps:                 s.ExcludedApps,
		ShiftDrag:                    s.ShiftDrag,
		MouseSwitch:                  s.MouseSwitch,
		ShowZonesOnAllMonitors:       s.ShowZonesOnAllMonitors,
		MakeDraggedWindowTransparent: s.MakeDraggedWindowTransparent,
		RestoreSize:                  s.RestoreSize,
		ElevatedWarningDisabled:      s.ElevatedWarningDisabled,
	}
}

var _ movesize.SettingsSource = (*Store)(nil)
