package ipc

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/monitormemory/internal/arrangement"
	"github.com/1broseidon/monitormemory/internal/daemon"
	"github.com/1broseidon/monitormemory/internal/reconcile"
	"github.com/1broseidon/monitormemory/internal/runtimepath"
)

// Controller is the daemon surface exposed over IPC.
type Controller interface {
	Status() daemon.Status
	Capture() (arrangement.Arrangement, error)
	SetPaused(paused bool)
	ReconcileNow() (reconcile.Outcome, error)
	Monitors() (arrangement.Arrangement, error)
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	ctrl         Controller
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. An empty socketPath selects the
// per-user runtime socket.
func NewServer(ctrl Controller, socketPath string) (*Server, error) {
	if socketPath == "" {
		path, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = path
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		ctrl:       ctrl,
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetMonitors:
		return s.handleGetMonitors()
	case CommandCapture:
		return s.handleCapture()
	case CommandPause:
		return s.handleSetPaused(true)
	case CommandResume:
		return s.handleSetPaused(false)
	case CommandReconcile:
		return s.handleReconcile()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus() *Response {
	st := s.ctrl.Status()
	data := StatusData{
		Paused:        st.Paused,
		LastOutcome:   st.LastOutcome,
		LastError:     st.LastError,
		Attempts:      st.Attempts,
		StorePath:     st.StorePath,
		Uptime:        st.Uptime,
		DaemonRunning: true,
	}
	if !st.LastCycle.IsZero() {
		data.LastCycle = st.LastCycle.Format(time.RFC3339)
	}
	return okResponse(data)
}

func (s *Server) handleGetMonitors() *Response {
	live, err := s.ctrl.Monitors()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to enumerate monitors: %v", err))
	}
	return okResponse(NewMonitorsData(live))
}

func (s *Server) handleCapture() *Response {
	captured, err := s.ctrl.Capture()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Capture failed: %v", err))
	}
	return okResponse(NewMonitorsData(captured))
}

func (s *Server) handleSetPaused(paused bool) *Response {
	s.ctrl.SetPaused(paused)
	return okResponse(PauseData{Paused: paused})
}

func (s *Server) handleReconcile() *Response {
	outcome, err := s.ctrl.ReconcileNow()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Reconcile failed: %v", err))
	}
	return okResponse(ReconcileData{Outcome: outcome.Kind.String(), Changed: outcome.Changed})
}

func okResponse(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// SocketPath returns the socket the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
