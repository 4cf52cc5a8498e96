package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/1broseidon/winprobe/internal/inspect"
)

const (
	ServerName    = "winprobe"
	ServerVersion = "0.1.0"
)

// Server is the MCP server exposing window lookup and control tools.
type Server struct {
	mcpServer *mcpsdk.Server
	inspector *inspect.Inspector
	logger    zerolog.Logger
}

// NewServer creates a new MCP server over inspector.
func NewServer(inspector *inspect.Inspector, logger zerolog.Logger) *Server {
	s := &Server{
		inspector: inspector,
		logger:    logger.With().Str("component", "mcp").Logger(),
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
	s.logger.Info().Str("backend", s.inspector.Backend().Name()).Msg("MCP server starting on stdio")
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "find_window",
		Description: "Find a top-level window by exact class name and/or exact title and return its handle. Results are cached; a cached handle is returned as long as that window is still open, even if its title changed since. Pass fresh: true to search the window list directly.",
	}, s.handleFindWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_info",
		Description: "Return class, title, process, geometry (outer bounds, visible frame, client area), always-on-top and focus state of a window, addressed by handle or by class/title.",
	}, s.handleWindowInfo)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move and resize a window to the given screen rectangle. Width and height must be positive.",
	}, s.handleMoveWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "set_topmost",
		Description: "Turn always-on-top on, off, or toggle it for a window. Returns the resulting state.",
	}, s.handleSetTopmost)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Bring a window to the foreground and give it input focus.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "foreground_window",
		Description: "Return information about the window that currently has input focus.",
	}, s.handleForegroundWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cache_stats",
		Description: "Report handle cache counters (hits, misses, stale entries, evictions). Optionally prune entries for closed windows first.",
	}, s.handleCacheStats)
}
