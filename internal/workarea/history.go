package workarea

import (
	"strconv"
	"sync"

	"github.com/1broseidon/snapzone/internal/zone"
	"github.com/google/uuid"
)

// AppIdentifier maps a window to the application it belongs to.
type AppIdentifier interface {
	AppID(window zone.WindowID) string
}

type historyKey struct {
	app    string
	areaID string
	setID  uuid.UUID
}

// History remembers per-window placement facts: the zones an application was
// last snapped into on a work area, the window size before it was first
// zoned, and whether it currently spans several zones.
type History struct {
	apps AppIdentifier

	mu        sync.Mutex
	lastZones map[historyKey]zone.ZoneIndexSet
	sizes     map[zone.WindowID]zone.Rect
	multi     map[zone.WindowID]bool
}

// NewHistory creates an empty history. With a nil apps every window is its
// own application.
func NewHistory(apps AppIdentifier) *History {
	return &History{
		apps:      apps,
		lastZones: make(map[historyKey]zone.ZoneIndexSet),
		sizes:     make(map[zone.WindowID]zone.Rect),
		multi:     make(map[zone.WindowID]bool),
	}
}

func (h *History) key(window zone.WindowID, areaID string, setID uuid.UUID) historyKey {
	app := ""
	if h.apps != nil {
		app = h.apps.AppID(window)
	}
	if app == "" {
		app = "window:" + strconv.FormatUint(uint64(window), 10)
	}
	return historyKey{app: app, areaID: areaID, setID: setID}
}

// SetLastZone records set as the zones the window's application last used.
func (h *History) SetLastZone(window zone.WindowID, areaID string, setID uuid.UUID, set zone.ZoneIndexSet) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastZones[h.key(window, areaID, setID)] = append(zone.ZoneIndexSet(nil), set...)
}

// LastZone returns the zones the window's application last used.
func (h *History) LastZone(window zone.WindowID, areaID string, setID uuid.UUID) (zone.ZoneIndexSet, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.lastZones[h.key(window, areaID, setID)]
	return set, ok
}

// RemoveAppLastZone forgets the application's last zone and reports whether
// there was one.
func (h *History) RemoveAppLastZone(window zone.WindowID, areaID string, setID uuid.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	k := h.key(window, areaID, setID)
	if _, ok := h.lastZones[k]; !ok {
		return false
	}
	delete(h.lastZones, k)
	return true
}

// SaveSize stores the window's pre-zone geometry. The first saved size wins
// until it is forgotten.
func (h *History) SaveSize(window zone.WindowID, r zone.Rect) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sizes[window]; !ok {
		h.sizes[window] = r
	}
}

// SavedSize returns the window's pre-zone geometry.
func (h *History) SavedSize(window zone.WindowID) (zone.Rect, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.sizes[window]
	return r, ok
}

// ForgetSize drops the window's pre-zone geometry.
func (h *History) ForgetSize(window zone.WindowID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sizes, window)
}

// SetMultipleZones marks whether the window spans more than one zone.
func (h *History) SetMultipleZones(window zone.WindowID, multiple bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if multiple {
		h.multi[window] = true
	} else {
		delete(h.multi, window)
	}
}

// IsMultipleZones reports whether the window spans more than one zone.
func (h *History) IsMultipleZones(window zone.WindowID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.multi[window]
}

// ClearMultipleZones drops the multiple-zone marker of the window.
func (h *History) ClearMultipleZones(window zone.WindowID) {
	h.SetMultipleZones(window, false)
}

// Forget drops the per-window facts of a destroyed window. Application
// history is kept.
func (h *History) Forget(window zone.WindowID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sizes, window)
	delete(h.multi, window)
}

// Windows returns the windows that have per-window facts recorded.
func (h *History) Windows() []zone.WindowID {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]zone.WindowID, 0, len(h.sizes)+len(h.multi))
	for w := range h.sizes {
		out = append(out, w)
	}
	for w := range h.multi {
		if _, ok := h.sizes[w]; !ok {
			out = append(out, w)
		}
	}
	return out
}
