package mcp

import "github.com/1broseidon/monitormemory/internal/ipc"

// GetStatusInput is the input for the get_status tool.
type GetStatusInput struct{}

// GetStatusOutput is the output for the get_status tool.
type GetStatusOutput struct {
	ipc.StatusData
}

// GetMonitorsInput is the input for the get_monitors tool.
type GetMonitorsInput struct{}

// MonitorsOutput lists monitors as the daemon sees them.
type MonitorsOutput struct {
	Monitors []ipc.MonitorInfo `json:"monitors"`
}

// CaptureInput is the input for the capture_arrangement tool.
type CaptureInput struct{}

// SetPausedInput is the input for the set_paused tool.
type SetPausedInput struct {
	Paused bool `json:"paused" jsonschema:"required,true to suspend automatic reconciling, false to resume it"`
}

// SetPausedOutput is the output for the set_paused tool.
type SetPausedOutput struct {
	Paused bool `json:"paused"`
}

// ReconcileInput is the input for the reconcile_now tool.
type ReconcileInput struct{}

// ReconcileOutput is the output for the reconcile_now tool.
type ReconcileOutput struct {
	Outcome string `json:"outcome"`
	Changed int    `json:"changed"`
}

// ListArrangementsInput is the input for the list_arrangements tool.
type ListArrangementsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of arrangements to return, most recent first (default: all)"`
}

// ArrangementInfo is one stored arrangement.
type ArrangementInfo struct {
	// Rank 0 is the most recently recorded arrangement.
	Rank     int               `json:"rank"`
	Monitors []ipc.MonitorInfo `json:"monitors"`
}

// ListArrangementsOutput is the output for the list_arrangements tool.
type ListArrangementsOutput struct {
	StorePath    string            `json:"store_path"`
	Total        int               `json:"total"`
	Arrangements []ArrangementInfo `json:"arrangements"`
}
