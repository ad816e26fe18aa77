package hotkeys

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/snapzone/internal/settings"
	"github.com/1broseidon/snapzone/internal/tracker"
	"github.com/1broseidon/snapzone/internal/zone"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// placeTimeout bounds how long a key press waits for the tracker.
const placeTimeout = time.Second

// Placer performs keyboard placements.
type Placer interface {
	Place(ctx context.Context, req tracker.PlaceRequest) (bool, error)
}

// Binding maps a key sequence such as "Mod4-Left" to a placement.
type Binding struct {
	Keys    string
	Request tracker.PlaceRequest
}

// Bindings lists the configured bindings. Empty key sequences are skipped.
func Bindings(h settings.Hotkeys) []Binding {
	if !h.Enabled {
		return nil
	}
	candidates := []struct {
		keys string
		kind tracker.PlaceKind
		dir  zone.Direction
	}{
		{h.MoveLeft, tracker.PlaceMove, zone.DirLeft},
		{h.MoveRight, tracker.PlaceMove, zone.DirRight},
		{h.MoveUp, tracker.PlaceMove, zone.DirUp},
		{h.MoveDown, tracker.PlaceMove, zone.DirDown},
		{h.ExtendLeft, tracker.PlaceExtend, zone.DirLeft},
		{h.ExtendRight, tracker.PlaceExtend, zone.DirRight},
		{h.ExtendUp, tracker.PlaceExtend, zone.DirUp},
		{h.ExtendDown, tracker.PlaceExtend, zone.DirDown},
	}

	var out []Binding
	for _, c := range candidates {
		if c.keys == "" {
			continue
		}
		out = append(out, Binding{Keys: c.keys, Request: tracker.PlaceRequest{Kind: c.kind, Direction: c.dir}})
	}
	return out
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	placer Placer
	logger *slog.Logger

	// mu serialises Bind; reloads arrive from several goroutines.
	mu      sync.Mutex
	detach  func()
	connect func(keys string, callback func()) error
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(xu *xgbutil.XUtil, root xproto.Window, placer Placer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})
	h := &Handler{xu: xu, root: root, placer: placer, logger: logger}
	h.detach = func() { keybind.Detach(xu, root) }
	h.connect = h.RegisterFunc
	return h
}

// Bind replaces all key bindings on the root window with those of h. A
// sequence that cannot be grabbed is logged and skipped.
func (h *Handler) Bind(hk settings.Hotkeys) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.detach()
	for _, b := range Bindings(hk) {
		if err := h.connect(b.Keys, func() { h.place(b) }); err != nil {
			h.logger.Warn("failed to register hotkey", "keys", b.Keys, "error", err)
			continue
		}
		h.logger.Debug("hotkey registered", "keys", b.Keys, "kind", b.Request.Kind, "direction", b.Request.Direction)
	}
}

func (h *Handler) place(b Binding) {
	ctx, cancel := context.WithTimeout(context.Background(), placeTimeout)
	defer cancel()

	placed, err := h.placer.Place(ctx, b.Request)
	if err != nil {
		h.logger.Warn("hotkey placement failed", "keys", b.Keys, "error", err)
		return
	}
	h.logger.Debug("hotkey placement", "keys", b.Keys, "placed", placed)
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	err := keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
	if err != nil {
		return fmt.Errorf("failed to bind %q: %w", keySequence, err)
	}
	return nil
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}
	xevent.IgnoreMods = ignoreMasks(base)
}

// ignoreMasks returns every combination of the lock masks in base,
// including the empty one.
func ignoreMasks(base []uint16) []uint16 {
	masks := make([]uint16, 0, 1<<len(base))
	for subset := 0; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		masks = append(masks, mask)
	}
	return masks
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
