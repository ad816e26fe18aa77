package workarea

import (
	"fmt"

	"github.com/1broseidon/snapzone/internal/layout"
	"github.com/1broseidon/snapzone/internal/zone"
	"github.com/google/uuid"
)

// zoneSetNamespace seeds layout identifiers.
var zoneSetNamespace = uuid.MustParse("0b5e3b8e-2f44-4c6b-8d8e-7d1f0c7a2e61")

// ZoneSetID derives the identifier of a layout applied to a work area. The
// same area and template always yield the same ID so history survives
// rebuilding the area.
func ZoneSetID(areaID string, spec layout.Spec) uuid.UUID {
	name := fmt.Sprintf("%s|%s|%d|%d", areaID, spec.Type, spec.ZoneCount, spec.Spacing)
	return uuid.NewSHA1(zoneSetNamespace, []byte(name))
}

// ZoneSet is a computed layout plus the windows currently placed in it.
type ZoneSet struct {
	id      uuid.UUID
	zones   []zone.Rect
	windows map[zone.WindowID]zone.ZoneIndexSet
}

func newZoneSet(id uuid.UUID, zones []zone.Rect) *ZoneSet {
	return &ZoneSet{
		id:      id,
		zones:   zones,
		windows: make(map[zone.WindowID]zone.ZoneIndexSet),
	}
}

func (s *ZoneSet) ID() uuid.UUID { return s.id }

func (s *ZoneSet) Zones() []zone.Rect { return s.zones }

// DismissWindow removes the window from every zone it occupies.
func (s *ZoneSet) DismissWindow(window zone.WindowID) {
	delete(s.windows, window)
}

// WindowZones returns the zones the window occupies.
func (s *ZoneSet) WindowZones(window zone.WindowID) zone.ZoneIndexSet {
	return s.windows[window]
}

func (s *ZoneSet) assign(window zone.WindowID, set zone.ZoneIndexSet) {
	s.windows[window] = append(zone.ZoneIndexSet(nil), set...)
}
