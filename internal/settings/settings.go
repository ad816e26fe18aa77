package settings

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/1broseidon/snapzone/internal/layout"
	"github.com/1broseidon/snapzone/internal/zone"
	"gopkg.in/yaml.v3"
)

// Color is an RGB color written as "#RRGGBB" in YAML.
type Color uint32

func (c Color) String() string {
	return fmt.Sprintf("#%06X", uint32(c)&0xFFFFFF)
}

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string like \"#RRGGBB\"")
	}
	parsed, err := ParseColor(value.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Color) MarshalYAML() (any, error) {
	return c.String(), nil
}

// ParseColor parses "#RRGGBB" or "RRGGBB".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("invalid color %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color(v), nil
}

// ZoneColors configures the zone overlay.
type ZoneColors struct {
	Primary   Color `yaml:"primary"`
	Border    Color `yaml:"border"`
	Highlight Color `yaml:"highlight"`
	Opacity   int   `yaml:"opacity"` // 0-100
}

// Hotkeys binds keyboard placement. Empty bindings are disabled.
type Hotkeys struct {
	Enabled         bool   `yaml:"enabled"`
	MoveLeft        string `yaml:"move_left"`
	MoveRight       string `yaml:"move_right"`
	MoveUp          string `yaml:"move_up"`
	MoveDown        string `yaml:"move_down"`
	ExtendLeft      string `yaml:"extend_left"`
	ExtendRight     string `yaml:"extend_right"`
	ExtendUp        string `yaml:"extend_up"`
	ExtendDown      string `yaml:"extend_down"`
	BasedOnPosition bool   `yaml:"based_on_position"`
	Cycle           bool   `yaml:"cycle"`
}

// Settings is the user configuration of the daemon.
type Settings struct {
	ExcludedApps                 []string               `yaml:"excluded_apps"`
	ShiftDrag                    bool                   `yaml:"shift_drag"`
	MouseSwitch                  bool                   `yaml:"mouse_switch"`
	ShowZonesOnAllMonitors       bool                   `yaml:"show_zones_on_all_monitors"`
	MakeDraggedWindowTransparent bool                   `yaml:"make_dragged_window_transparent"`
	RestoreSize                  bool                   `yaml:"restore_size"`
	ElevatedWarningDisabled      bool                   `yaml:"elevated_warning_disabled"`
	SpanZonesAcrossMonitors      bool                   `yaml:"span_zones_across_monitors"`
	ZoneColors                   ZoneColors             `yaml:"zone_colors"`
	OverlappingAlgorithm         string                 `yaml:"overlapping_algorithm"`
	DefaultLayout                layout.Spec            `yaml:"default_layout"`
	Layouts                      map[string]layout.Spec `yaml:"layouts"`
	PollIntervalMS               int                    `yaml:"poll_interval_ms"`
	Hotkeys                      Hotkeys                `yaml:"hotkeys"`
	MetricsListen                string                 `yaml:"metrics_listen,omitempty"`
	LogLevel                     string                 `yaml:"log_level"`
	Display                      string                 `yaml:"display,omitempty"`
}

// ValidationError reports an invalid setting at a YAML path.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func DefaultSettings() *Settings {
	return &Settings{
		ExcludedApps:                 []string{},
		ShiftDrag:                    true,
		MouseSwitch:                  false,
		ShowZonesOnAllMonitors:       false,
		MakeDraggedWindowTransparent: true,
		RestoreSize:                  true,
		ZoneColors: ZoneColors{
			Primary:   0xF5FCFF,
			Border:    0xFFFFFF,
			Highlight: 0x008CFF,
			Opacity:   50,
		},
		OverlappingAlgorithm: zone.OverlapSmallest.String(),
		DefaultLayout:        layout.Spec{Type: layout.TypePriorityGrid, ZoneCount: 3, Spacing: 16},
		Layouts:              make(map[string]layout.Spec),
		PollIntervalMS:       16,
		Hotkeys: Hotkeys{
			Enabled:         true,
			MoveLeft:        "Mod4-Left",
			MoveRight:       "Mod4-Right",
			MoveUp:          "Mod4-Up",
			MoveDown:        "Mod4-Down",
			ExtendLeft:      "Mod4-Mod1-Left",
			ExtendRight:     "Mod4-Mod1-Right",
			ExtendUp:        "Mod4-Mod1-Up",
			ExtendDown:      "Mod4-Mod1-Down",
			BasedOnPosition: true,
		},
		LogLevel: "info",
	}
}

// Validate performs strict validation of the settings.
func (s *Settings) Validate() error {
	for i, app := range s.ExcludedApps {
		if strings.TrimSpace(app) == "" {
			return &ValidationError{Path: fmt.Sprintf("excluded_apps[%d]", i), Err: fmt.Errorf("entry must not be empty")}
		}
	}
	if s.ZoneColors.Opacity < 0 || s.ZoneColors.Opacity > 100 {
		return &ValidationError{Path: "zone_colors.opacity", Err: fmt.Errorf("opacity must be between 0 and 100")}
	}
	if _, err := zone.ParseOverlappingAlgorithm(s.OverlappingAlgorithm); err != nil {
		return &ValidationError{Path: "overlapping_algorithm", Err: fmt.Errorf("overlapping_algorithm must be one of: smallest, largest, positional")}
	}
	if err := s.DefaultLayout.Validate(); err != nil {
		return &ValidationError{Path: "default_layout", Err: err}
	}
	for name, spec := range s.Layouts {
		if strings.TrimSpace(name) == "" {
			return &ValidationError{Path: "layouts", Err: fmt.Errorf("layouts contains an empty monitor name")}
		}
		if err := spec.Validate(); err != nil {
			return &ValidationError{Path: "layouts." + name, Err: err}
		}
	}
	if s.PollIntervalMS < 1 || s.PollIntervalMS > 1000 {
		return &ValidationError{Path: "poll_interval_ms", Err: fmt.Errorf("poll_interval_ms must be between 1 and 1000")}
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	return nil
}

// LayoutFor returns the layout of the named monitor, or the default layout.
func (s *Settings) LayoutFor(monitorName string) layout.Spec {
	if spec, ok := s.Layouts[monitorName]; ok {
		return spec
	}
	return s.DefaultLayout
}

// Algorithm returns the parsed overlapping algorithm.
func (s *Settings) Algorithm() zone.OverlappingAlgorithm {
	alg, _ := zone.ParseOverlappingAlgorithm(s.OverlappingAlgorithm)
	return alg
}

// Colors returns the overlay colors in work-area form.
func (s *Settings) Colors() zone.ZoneColors {
	return zone.ZoneColors{
		Primary:   uint32(s.ZoneColors.Primary),
		Border:    uint32(s.ZoneColors.Border),
		Highlight: uint32(s.ZoneColors.Highlight),
		Opacity:   s.ZoneColors.Opacity,
	}
}

// PollInterval returns the pointer polling period.
func (s *Settings) PollInterval() time.Duration {
	if s.PollIntervalMS <= 0 {
		return 16 * time.Millisecond
	}
	return time.Duration(s.PollIntervalMS) * time.Millisecond
}

// SlogLevel maps log_level to a slog level.
func (s *Settings) SlogLevel() slog.Level {
	switch s.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsExcluded reports whether an application matches excluded_apps.
func (s *Settings) IsExcluded(names ...string) bool {
	return MatchesExcluded(s.ExcludedApps, names...)
}

// MatchesExcluded reports whether any pattern is a case-insensitive
// substring of any of the names.
func MatchesExcluded(patterns []string, names ...string) bool {
	for _, pattern := range patterns {
		p := strings.ToLower(strings.TrimSpace(pattern))
		if p == "" {
			continue
		}
		for _, name := range names {
			if name != "" && strings.Contains(strings.ToLower(name), p) {
				return true
			}
		}
	}
	return false
}
