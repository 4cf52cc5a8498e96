package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/winprobe/internal/platform"
)

// Client talks to the daemon over its unix socket.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client for socketPath.
func NewClient(socketPath string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{socketPath: socketPath, timeout: timeout}
}

// ConnectError reports that the daemon could not be reached at all, as
// opposed to the daemon answering with an error.
type ConnectError struct {
	SocketPath string
	Err        error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("daemon not reachable at %s: %v (is the daemon running?)", e.SocketPath, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// roundTrip dials the daemon, writes req as one JSON line and decodes the
// single response line. Each call uses a fresh connection.
func (c *Client) roundTrip(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, &ConnectError{SocketPath: c.socketPath, Err: err}
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(c.timeout))

	// Encode terminates the value with a newline.
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return nil, fmt.Errorf("send %s request: %w", req.Command, err)
	}
	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, fmt.Errorf("read %s response: %w", req.Command, err)
	}
	if resp.Status == StatusError {
		return nil, resp.remoteError()
	}
	return &resp, nil
}

// call sends cmd with an optional payload and decodes the response data
// into out when out is non-nil.
func (c *Client) call(cmd CommandType, payload, out any) error {
	req := &Request{Command: cmd}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", cmd, err)
		}
		req.Payload = raw
	}

	resp, err := c.roundTrip(req)
	if err != nil || out == nil {
		return err
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", cmd, err)
	}
	return nil
}

// Resolve asks the daemon's shared cache for a handle.
func (c *Client) Resolve(q platform.Query) (platform.Handle, error) {
	var data ResolveData
	if err := c.call(CommandResolve, QueryPayload{Class: q.Class, Title: q.Title}, &data); err != nil {
		return 0, err
	}
	return platform.Handle(data.Handle), nil
}

// Info retrieves window metadata by handle.
func (c *Client) Info(h platform.Handle) (*platform.Window, error) {
	var w platform.Window
	if err := c.call(CommandInfo, InfoPayload{Handle: uint64(h)}, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// InfoByQuery resolves q through the daemon and retrieves its metadata.
func (c *Client) InfoByQuery(q platform.Query) (*platform.Window, error) {
	var w platform.Window
	if err := c.call(CommandInfo, InfoPayload{Class: q.Class, Title: q.Title}, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Prune asks the daemon to drop dead cache entries.
func (c *Client) Prune() (int, error) {
	var data PruneData
	if err := c.call(CommandPrune, nil, &data); err != nil {
		return 0, err
	}
	return data.Removed, nil
}

// Purge asks the daemon to empty its cache.
func (c *Client) Purge() error {
	return c.call(CommandPurge, nil, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
