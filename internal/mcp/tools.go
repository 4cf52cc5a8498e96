package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winprobe/internal/platform"
)

// target resolves a tool's handle or class/title arguments to a handle. An
// explicit handle is used as is; per-window operations report WindowNotExist
// for dead handles.
func (s *Server) target(handle uint64, class, title string) (platform.Handle, error) {
	if handle != 0 {
		return platform.Handle(handle), nil
	}
	return s.inspector.Resolve(platform.Query{Class: class, Title: title})
}

func (s *Server) handleFindWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args FindWindowInput) (*mcpsdk.CallToolResult, FindWindowOutput, error) {
	q := platform.Query{Class: args.Class, Title: args.Title}

	var (
		h   platform.Handle
		err error
	)
	if args.Fresh {
		h, err = s.inspector.Find(q)
	} else {
		h, err = s.inspector.Resolve(q)
	}
	if err != nil {
		return nil, FindWindowOutput{}, err
	}

	s.logger.Debug().Str("class", q.Class).Str("title", q.Title).Stringer("handle", h).Bool("fresh", args.Fresh).Msg("find_window")
	return nil, FindWindowOutput{Handle: uint64(h), HandleHex: h.String()}, nil
}

func (s *Server) handleWindowInfo(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInfoInput) (*mcpsdk.CallToolResult, WindowInfoOutput, error) {
	h, err := s.target(args.Handle, args.Class, args.Title)
	if err != nil {
		return nil, WindowInfoOutput{}, err
	}
	w, err := s.inspector.Info(h)
	if err != nil {
		return nil, WindowInfoOutput{}, err
	}
	return nil, windowInfoOutput(w), nil
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, MoveWindowOutput, error) {
	h, err := s.target(args.Handle, args.Class, args.Title)
	if err != nil {
		return nil, MoveWindowOutput{}, err
	}
	bounds := platform.Rect{X: args.X, Y: args.Y, Width: args.Width, Height: args.Height}
	if err := s.inspector.Move(h, bounds); err != nil {
		return nil, MoveWindowOutput{}, err
	}
	s.logger.Info().Stringer("handle", h).Int("x", args.X).Int("y", args.Y).Int("width", args.Width).Int("height", args.Height).Msg("move_window")
	return nil, MoveWindowOutput{Handle: uint64(h), Bounds: bounds}, nil
}

func (s *Server) handleSetTopmost(_ context.Context, _ *mcpsdk.CallToolRequest, args SetTopmostInput) (*mcpsdk.CallToolResult, SetTopmostOutput, error) {
	state := strings.ToLower(strings.TrimSpace(args.State))
	switch state {
	case "on", "off", "toggle":
	default:
		return nil, SetTopmostOutput{}, fmt.Errorf("state must be one of: on, off, toggle (got %q)", args.State)
	}

	h, err := s.target(args.Handle, args.Class, args.Title)
	if err != nil {
		return nil, SetTopmostOutput{}, err
	}

	var topmost bool
	switch state {
	case "toggle":
		topmost, err = s.inspector.ToggleTopmost(h)
	default:
		topmost = state == "on"
		err = s.inspector.SetTopmost(h, topmost)
	}
	if err != nil {
		return nil, SetTopmostOutput{}, err
	}
	s.logger.Info().Stringer("handle", h).Bool("topmost", topmost).Msg("set_topmost")
	return nil, SetTopmostOutput{Handle: uint64(h), Topmost: topmost}, nil
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusWindowInput) (*mcpsdk.CallToolResult, FocusWindowOutput, error) {
	h, err := s.target(args.Handle, args.Class, args.Title)
	if err != nil {
		return nil, FocusWindowOutput{}, err
	}
	if err := s.inspector.Focus(h); err != nil {
		return nil, FocusWindowOutput{}, err
	}
	return nil, FocusWindowOutput{Handle: uint64(h), Focused: s.inspector.IsForeground(h)}, nil
}

func (s *Server) handleForegroundWindow(_ context.Context, _ *mcpsdk.CallToolRequest, _ ForegroundWindowInput) (*mcpsdk.CallToolResult, WindowInfoOutput, error) {
	h, err := s.inspector.Foreground()
	if err != nil {
		return nil, WindowInfoOutput{}, err
	}
	w, err := s.inspector.Info(h)
	if err != nil {
		return nil, WindowInfoOutput{}, err
	}
	return nil, windowInfoOutput(w), nil
}

func (s *Server) handleCacheStats(_ context.Context, _ *mcpsdk.CallToolRequest, args CacheStatsInput) (*mcpsdk.CallToolResult, CacheStatsOutput, error) {
	var out CacheStatsOutput
	if args.Prune {
		removed, err := s.inspector.PruneCache()
		if err != nil {
			return nil, CacheStatsOutput{}, err
		}
		out.Pruned = removed
	}
	stats, err := s.inspector.CacheStats()
	if err != nil {
		return nil, CacheStatsOutput{}, err
	}
	out.Cache = stats
	out.HitRatio = stats.HitRatio()
	return nil, out, nil
}
