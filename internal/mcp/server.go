// Package mcp exposes the daemon commands and the arrangement store as MCP
// tools over stdio.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/monitormemory/internal/arrangement"
	"github.com/1broseidon/monitormemory/internal/ipc"
)

const (
	ServerName    = "monitormemory"
	ServerVersion = "0.1.0"
)

// Daemon is the subset of the IPC client the tools need.
type Daemon interface {
	GetStatus() (*ipc.StatusData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	Capture() (*ipc.MonitorsData, error)
	SetPaused(paused bool) error
	Reconcile() (*ipc.ReconcileData, error)
}

// Store reads recorded arrangements.
type Store interface {
	Load() ([]arrangement.Arrangement, error)
	Path() string
}

// Server is the MCP server for monitor arrangement memory.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	store     Store
}

// NewServer creates an MCP server talking to daemon and reading store.
func NewServer(daemon Daemon, store Store) *Server {
	s := &Server{
		daemon: daemon,
		store:  store,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_status",
		Description: "Report whether the monitormemory daemon is paused, the outcome of its last reconcile cycle and any pending error.",
	}, s.handleGetStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_monitors",
		Description: "List the monitors currently attached, with device name, product name, size, position relative to the primary and rotation (0=none, 1=90, 2=180, 3=270).",
	}, s.handleGetMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "capture_arrangement",
		Description: "Record the current monitor arrangement as the newest remembered layout, even if a matching arrangement is already stored. Works while paused.",
	}, s.handleCapture)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_paused",
		Description: "Pause or resume automatic reapplication of remembered arrangements. Resuming triggers a reconcile.",
	}, s.handleSetPaused)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "reconcile_now",
		Description: "Match the attached monitors against remembered arrangements now and apply the most recent match. Returns recorded, applied, unchanged or paused.",
	}, s.handleReconcile)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_arrangements",
		Description: "List remembered arrangements from the arrangement file, most recent first. Does not require the daemon.",
	}, s.handleListArrangements)
}
