package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/snapzone/internal/settings"
	"github.com/1broseidon/snapzone/internal/tracker"
	"github.com/1broseidon/snapzone/internal/zone"
)

const requestTimeout = 2 * time.Second

// Controller is the daemon state the server exposes. *tracker.Tracker
// satisfies it.
type Controller interface {
	Status(ctx context.Context) (tracker.Status, error)
	Areas(ctx context.Context) ([]tracker.AreaInfo, error)
	Place(ctx context.Context, req tracker.PlaceRequest) (bool, error)
	ApplySettings(ctx context.Context, s *settings.Settings) error
}

var _ Controller = (*tracker.Tracker)(nil)

// ServerConfig configures NewServer.
type ServerConfig struct {
	SocketPath   string
	SettingsPath string
	Controller   Controller
	// OnReload runs after every RELOAD with the loaded settings or the load
	// error.
	OnReload func(*settings.Settings, error)
	Logger   *slog.Logger
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	settingsPath string
	ctrl         Controller
	onReload     func(*settings.Settings, error)
	logger       *slog.Logger
	startTime    time.Time

	listener     net.Listener
	conns        sync.WaitGroup
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. A stale socket file is removed.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.SocketPath == "" {
		return nil, fmt.Errorf("socket path is required")
	}
	if cfg.Controller == nil {
		return nil, fmt.Errorf("controller is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.Remove(cfg.SocketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove stale socket: %w", err)
	}

	return &Server{
		socketPath:   cfg.SocketPath,
		settingsPath: cfg.SettingsPath,
		ctrl:         cfg.Controller,
		onReload:     cfg.OnReload,
		logger:       logger,
		startTime:    time.Now(),
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("ipc server listening", "socket", s.socketPath)

	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			stopping := s.shuttingDown
			s.shutdownMu.Unlock()
			if stopping || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("ipc accept failed", "error", err)
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection serves one newline-terminated JSON request.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(requestTimeout + time.Second))

	reader := bufio.NewReader(conn)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("ipc read failed", "error", err)
		return
	}

	var resp *Response
	req, err := ParseRequest(data)
	if err != nil {
		resp = NewErrorResponse(fmt.Sprintf("invalid request: %v", err))
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		resp = s.handleCommand(ctx, req)
		cancel()
	}

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal ipc response", "error", err)
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send ipc response", "error", err)
	}
}

func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("ipc request", "command", req.Command)
	switch req.Command {
	case CommandReload:
		return s.handleReload(ctx)
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	case CommandGetAreas:
		return s.handleGetAreas(ctx)
	case CommandPlace:
		return s.handlePlace(ctx, req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("unknown command: %s", req.Command))
	}
}

func (s *Server) handleReload(ctx context.Context) *Response {
	next, err := settings.LoadFromPath(s.settingsPath)
	if err == nil {
		err = s.ctrl.ApplySettings(ctx, next)
	}
	if s.onReload != nil {
		s.onReload(next, err)
	}
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("failed to reload settings: %v", err))
	}
	s.logger.Info("settings reloaded over ipc", "path", s.settingsPath)
	return ok(nil)
}

func (s *Server) handleGetStatus(ctx context.Context) *Response {
	st, err := s.ctrl.Status(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("failed to get status: %v", err))
	}
	return ok(StatusData{
		Status:        st,
		SettingsPath:  s.settingsPath,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	})
}

func (s *Server) handleGetAreas(ctx context.Context) *Response {
	areas, err := s.ctrl.Areas(ctx)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("failed to list work areas: %v", err))
	}
	if areas == nil {
		areas = []tracker.AreaInfo{}
	}
	return ok(AreasData{Areas: areas})
}

func (s *Server) handlePlace(ctx context.Context, payload json.RawMessage) *Response {
	var p PlacePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("invalid place payload: %v", err))
	}
	req, err := PlaceRequestFromPayload(p)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	placed, err := s.ctrl.Place(ctx, req)
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("failed to place window: %v", err))
	}
	return ok(PlaceData{Placed: placed})
}

// PlaceRequestFromPayload validates p and converts it to a tracker request.
func PlaceRequestFromPayload(p PlacePayload) (tracker.PlaceRequest, error) {
	req := tracker.PlaceRequest{
		Kind:   tracker.PlaceKind(p.Kind),
		Window: zone.WindowID(p.Window),
	}
	switch req.Kind {
	case tracker.PlaceMove, tracker.PlaceExtend:
		dir, err := zone.ParseDirection(p.Direction)
		if err != nil {
			return req, err
		}
		req.Direction = dir
	case tracker.PlaceZones:
		if len(p.Zones) == 0 {
			return req, fmt.Errorf("zones is required")
		}
		req.Zones = zone.ZoneIndexSet(p.Zones)
	default:
		return req, fmt.Errorf("kind must be one of: move, extend, zones")
	}
	return req, nil
}

func ok(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// Stop closes the listener, waits for in-flight requests and removes the
// socket file.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	os.Remove(s.socketPath)
}
