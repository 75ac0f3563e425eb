package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/monitormemory/internal/arrangement"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandGetMonitors CommandType = "GET_MONITORS"
	CommandCapture     CommandType = "CAPTURE"
	CommandPause       CommandType = "PAUSE"
	CommandResume      CommandType = "RESUME"
	CommandReconcile   CommandType = "RECONCILE"
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
	Paused        bool   `json:"paused"`
	LastOutcome   string `json:"last_outcome,omitempty"`
	LastError     string `json:"last_error,omitempty"`
	LastCycle     string `json:"last_cycle,omitempty"`
	Attempts      int    `json:"attempts"`
	StorePath     string `json:"store_path,omitempty"`
	Uptime        string `json:"uptime"`
	DaemonRunning bool   `json:"daemon_running"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	Device   string `json:"device"`
	Name     string `json:"name"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Rotation int    `json:"rotation"`
}

// MonitorsData represents the data returned by GET_MONITORS and CAPTURE
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// ReconcileData represents the data returned by RECONCILE
type ReconcileData struct {
	Outcome string `json:"outcome"`
	Changed int    `json:"changed"`
}

// PauseData represents the data returned by PAUSE and RESUME
type PauseData struct {
	Paused bool `json:"paused"`
}

// NewMonitorsData converts an arrangement for the wire.
func NewMonitorsData(a arrangement.Arrangement) MonitorsData {
	data := MonitorsData{Monitors: make([]MonitorInfo, 0, len(a))}
	for _, m := range a {
		data.Monitors = append(data.Monitors, MonitorInfo{
			Device:   m.DeviceName,
			Name:     m.DisplayName,
			X:        m.Position.X,
			Y:        m.Position.Y,
			Width:    m.Width,
			Height:   m.Height,
			Rotation: int(m.Rotation),
		})
	}
	return data
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
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
