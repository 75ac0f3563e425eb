package mcp

import (
	"context"
	"errors"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/monitormemory/internal/ipc"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetStatusInput) (*mcpsdk.CallToolResult, GetStatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	return nil, GetStatusOutput{StatusData: *status}, nil
}

func (s *Server) handleGetMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ GetMonitorsInput) (*mcpsdk.CallToolResult, MonitorsOutput, error) {
	data, err := s.daemon.GetMonitors()
	if err != nil {
		return nil, MonitorsOutput{}, err
	}
	return nil, MonitorsOutput{Monitors: data.Monitors}, nil
}

func (s *Server) handleCapture(_ context.Context, _ *mcpsdk.CallToolRequest, _ CaptureInput) (*mcpsdk.CallToolResult, MonitorsOutput, error) {
	data, err := s.daemon.Capture()
	if err != nil {
		return nil, MonitorsOutput{}, err
	}
	return nil, MonitorsOutput{Monitors: data.Monitors}, nil
}

func (s *Server) handleSetPaused(_ context.Context, _ *mcpsdk.CallToolRequest, args SetPausedInput) (*mcpsdk.CallToolResult, SetPausedOutput, error) {
	if err := s.daemon.SetPaused(args.Paused); err != nil {
		return nil, SetPausedOutput{}, err
	}
	return nil, SetPausedOutput{Paused: args.Paused}, nil
}

func (s *Server) handleReconcile(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReconcileInput) (*mcpsdk.CallToolResult, ReconcileOutput, error) {
	result, err := s.daemon.Reconcile()
	if err != nil {
		return nil, ReconcileOutput{}, err
	}
	return nil, ReconcileOutput{Outcome: result.Outcome, Changed: result.Changed}, nil
}

func (s *Server) handleListArrangements(_ context.Context, _ *mcpsdk.CallToolRequest, args ListArrangementsInput) (*mcpsdk.CallToolResult, ListArrangementsOutput, error) {
	if args.Limit < 0 {
		return nil, ListArrangementsOutput{}, errors.New("limit must not be negative")
	}
	stored, err := s.store.Load()
	if err != nil {
		return nil, ListArrangementsOutput{}, err
	}

	out := ListArrangementsOutput{
		StorePath:    s.store.Path(),
		Total:        len(stored),
		Arrangements: []ArrangementInfo{},
	}
	for i, arr := range stored {
		if args.Limit > 0 && i >= args.Limit {
			break
		}
		out.Arrangements = append(out.Arrangements, ArrangementInfo{
			Rank:     i,
			Monitors: ipc.NewMonitorsData(arr).Monitors,
		})
	}
	return nil, out, nil
}
