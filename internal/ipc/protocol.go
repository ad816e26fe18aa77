package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/snapzone/internal/tracker"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload    CommandType = "RELOAD"
	CommandGetStatus CommandType = "GET_STATUS"
	CommandGetAreas  CommandType = "GET_AREAS"
	CommandPlace     CommandType = "PLACE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	tracker.Status
	SettingsPath  string `json:"settings_path"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
}

// AreasData represents the data returned by GET_AREAS
type AreasData struct {
	Areas []tracker.AreaInfo `json:"areas"`
}

// PlacePayload represents the payload for PLACE. Kind is move, extend or
// zones; Direction applies to move and extend, Zones to zones.
type PlacePayload struct {
	Kind      string `json:"kind"`
	Direction string `json:"direction,omitempty"`
	Zones     []int  `json:"zones,omitempty"`
	Window    uint32 `json:"window,omitempty"`
}

// PlaceData reports whether a PLACE moved the window.
type PlaceData struct {
	Placed bool `json:"placed"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
