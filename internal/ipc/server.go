package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/1broseidon/winprobe/internal/inspect"
	"github.com/1broseidon/winprobe/internal/platform"
)

// ErrDaemonRunning is returned by Start when another daemon already answers
// on the socket.
var ErrDaemonRunning = errors.New("daemon already running")

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	inspector    *inspect.Inspector
	timeout      time.Duration
	logger       zerolog.Logger
	startTime    time.Time
	conns        sync.WaitGroup
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// ServerConfig holds configuration for the IPC server.
type ServerConfig struct {
	SocketPath string
	// Timeout bounds reading a request and writing its response.
	Timeout time.Duration
	Logger  zerolog.Logger
}

// NewServer creates a new IPC server
func NewServer(inspector *inspect.Inspector, cfg ServerConfig) (*Server, error) {
	if cfg.SocketPath == "" {
		return nil, fmt.Errorf("socket path is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Server{
		socketPath: cfg.SocketPath,
		inspector:  inspector,
		timeout:    timeout,
		logger:     cfg.Logger.With().Str("component", "ipc").Logger(),
		startTime:  time.Now(),
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	if conn, err := net.DialTimeout("unix", s.socketPath, 200*time.Millisecond); err == nil {
		conn.Close()
		return fmt.Errorf("%w on %s", ErrDaemonRunning, s.socketPath)
	}

	// Remove stale socket if present
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info().Str("socket", s.socketPath).Msg("IPC server listening")

	go s.acceptLoop()

	return nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
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
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn().Err(err).Msg("IPC accept error")
			continue
		}

		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(s.timeout))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn().Err(err).Msg("IPC read error")
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("invalid request: %v", err)))
		return
	}

	resp := s.safeHandle(req)
	s.send(conn, resp)
}

func (s *Server) safeHandle(req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("command", string(req.Command)).Msg("IPC handler panic recovered")
			resp = NewErrorResponse(fmt.Sprintf("internal error handling %s", req.Command))
		}
	}()
	return s.handleCommand(req)
}

func (s *Server) send(conn net.Conn, resp *Response) {
	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal response")
		return
	}
	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn().Err(err).Msg("failed to send response")
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug().Str("command", string(req.Command)).Msg("IPC request")
	switch req.Command {
	case CommandResolve:
		return s.handleResolve(req.Payload)
	case CommandInfo:
		return s.handleInfo(req.Payload)
	case CommandStatus:
		return s.handleStatus()
	case CommandPrune:
		return s.handlePrune()
	case CommandPurge:
		return s.handlePurge()
	default:
		return NewErrorResponse(fmt.Sprintf("unknown command: %s", req.Command))
	}
}

func (s *Server) handleResolve(payload json.RawMessage) *Response {
	var q QueryPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &q); err != nil {
			return NewErrorResponse(fmt.Sprintf("invalid resolve payload: %v", err))
		}
	}

	h, err := s.inspector.Resolve(platform.Query{Class: q.Class, Title: q.Title})
	if err != nil {
		return NewErrorResponseFromErr(err)
	}
	return mustOK(ResolveData{Handle: uint64(h)})
}

func (s *Server) handleInfo(payload json.RawMessage) *Response {
	var p InfoPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			return NewErrorResponse(fmt.Sprintf("invalid info payload: %v", err))
		}
	}

	var (
		w   platform.Window
		err error
	)
	if p.Handle != 0 {
		w, err = s.inspector.Info(platform.Handle(p.Handle))
	} else {
		w, err = s.inspector.InfoByQuery(platform.Query{Class: p.Class, Title: p.Title})
	}
	if err != nil {
		return NewErrorResponseFromErr(err)
	}
	return mustOK(w)
}

func (s *Server) handleStatus() *Response {
	stats, err := s.inspector.CacheStats()
	if err != nil {
		return NewErrorResponseFromErr(err)
	}
	return mustOK(StatusData{
		Backend:       s.inspector.Backend().Name(),
		PID:           os.Getpid(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
		Cache:         stats,
	})
}

func (s *Server) handlePrune() *Response {
	removed, err := s.inspector.PruneCache()
	if err != nil {
		return NewErrorResponseFromErr(err)
	}
	s.logger.Info().Int("removed", removed).Msg("cache pruned on request")
	return mustOK(PruneData{Removed: removed})
}

func (s *Server) handlePurge() *Response {
	if err := s.inspector.PurgeCache(); err != nil {
		return NewErrorResponseFromErr(err)
	}
	s.logger.Info().Msg("cache purged on request")
	return mustOK(nil)
}

func mustOK(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// Stop gracefully shuts down the IPC server and waits for in-flight requests.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	os.Remove(s.socketPath)
	s.logger.Info().Msg("IPC server stopped")
}
