package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/snapzone/internal/hotkeys"
	"github.com/1broseidon/snapzone/internal/ipc"
	"github.com/1broseidon/snapzone/internal/metrics"
	"github.com/1broseidon/snapzone/internal/notify"
	"github.com/1broseidon/snapzone/internal/overlay"
	"github.com/1broseidon/snapzone/internal/platform"
	"github.com/1broseidon/snapzone/internal/runtimepath"
	"github.com/1broseidon/snapzone/internal/settings"
	"github.com/1broseidon/snapzone/internal/tracker"
	"github.com/1broseidon/snapzone/internal/workarea"
)

func runDaemon(args []string) int {
	fs := newFlagSet("daemon", "Usage: snapzone daemon [--config PATH] [--display NAME]\n\nStart the snapzone daemon in the foreground.")
	configPath := fs.String("config", "", "Config file path (default: ~/.config/snapzone/config.yaml)")
	displayName := fs.String("display", "", "X display (default: settings display, then $DISPLAY)")
	if code, stop := parseFlags(fs, args, 0); stop {
		return code
	}

	path, err := settingsPath(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg, err := settings.LoadFromPath(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "path", path, "layout", cfg.DefaultLayout.Type, "shift_drag", cfg.ShiftDrag)

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		logger.Error("failed to resolve ipc socket path", "error", err)
		return 1
	}
	if daemonRunning(socketPath) {
		logger.Error("another snapzone daemon is already running", "socket", socketPath)
		return 1
	}

	display := *displayName
	if display == "" {
		display = cfg.Display
	}
	backend, conn, err := platform.NewLinuxBackendFromDisplay(display, logger)
	if err != nil {
		logger.Error("failed to connect to display", "error", err)
		return 1
	}
	defer conn.Close()
	if !conn.HasCursorNames() {
		logger.Warn("xfixes cursor names unavailable, resize cursor is never detected")
	}

	history := workarea.NewHistory(backend)
	backend.SetHistory(history)
	overlays := overlay.NewManager(conn.XUtil, conn.Root)
	m := metrics.New()

	trk, err := tracker.New(tracker.Config{
		Backend:      backend,
		Settings:     settings.NewStore(cfg),
		Inspector:    backend,
		Transparency: backend,
		Sizes:        backend,
		Notifier:     notify.New("snapzone"),
		Observer:     m,
		History:      history,
		NewOverlay:   func() workarea.Overlay { return overlays.NewZones() },
		Gauges:       m,
		Logger:       logger.With("component", "tracker"),
	})
	if err != nil {
		logger.Error("failed to create tracker", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	keys := hotkeys.NewHandler(conn.XUtil, conn.Root, trk, logger.With("component", "hotkeys"))
	keys.Bind(cfg.Hotkeys)

	// applied runs after every reload, wherever it came from.
	applied := func(next *settings.Settings, err error) {
		m.ObserveReload(err)
		if err != nil {
			logger.Warn("settings reload failed", "error", err)
			return
		}
		level.Set(next.SlogLevel())
		keys.Bind(next.Hotkeys)
	}
	reload := func(next *settings.Settings) {
		applied(next, trk.ApplySettings(ctx, next))
	}

	watcher := settings.NewWatcher(path, reload, logger.With("component", "settings"))
	go func() {
		if err := watcher.Run(ctx); err != nil {
			logger.Warn("settings watcher stopped", "error", err)
		}
	}()

	server, err := ipc.NewServer(ipc.ServerConfig{
		SocketPath:   socketPath,
		SettingsPath: path,
		Controller:   trk,
		OnReload:     applied,
		Logger:       logger.With("component", "ipc"),
	})
	if err != nil {
		logger.Error("failed to create ipc server", "error", err)
		return 1
	}
	if err := server.Start(); err != nil {
		logger.Error("failed to start ipc server", "error", err)
		return 1
	}
	defer server.Stop()

	if cfg.MetricsListen != "" {
		go func() {
			if err := m.Serve(ctx, cfg.MetricsListen, logger); err != nil {
				logger.Warn("metrics endpoint stopped", "error", err)
			}
		}()
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				logger.Info("received SIGHUP, reloading settings")
				next, err := settings.LoadFromPath(path)
				if err != nil {
					applied(nil, err)
					continue
				}
				reload(next)
			}
		}
	}()

	go conn.EventLoop()
	go func() {
		<-ctx.Done()
		conn.Quit()
	}()

	logger.Info("snapzone daemon started", "socket", socketPath)
	trk.Run(ctx)
	logger.Info("snapzone daemon stopped")
	return 0
}

// daemonRunning reports whether a daemon answers on socketPath. A stale
// socket left by a crashed daemon does not count.
func daemonRunning(socketPath string) bool {
	return ipc.NewClientAt(socketPath).Ping() == nil
}
