package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/winprobe/internal/handlecache"
	"github.com/1broseidon/winprobe/internal/platform"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandResolve CommandType = "RESOLVE"
	CommandInfo    CommandType = "INFO"
	CommandStatus  CommandType = "STATUS"
	CommandPrune   CommandType = "PRUNE"
	CommandPurge   CommandType = "PURGE"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
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
	// Kind is the platform error kind name for ERROR responses, e.g. "not_found".
	Kind string `json:"kind,omitempty"`
}

// QueryPayload is the payload for RESOLVE.
type QueryPayload struct {
	Class string `json:"class,omitempty"`
	Title string `json:"title,omitempty"`
}

// InfoPayload is the payload for INFO. A non-zero Handle wins over the query.
type InfoPayload struct {
	Handle uint64 `json:"handle,omitempty"`
	Class  string `json:"class,omitempty"`
	Title  string `json:"title,omitempty"`
}

// ResolveData is returned by RESOLVE.
type ResolveData struct {
	Handle uint64 `json:"handle"`
}

// StatusData represents the data returned by STATUS
type StatusData struct {
	Backend       string            `json:"backend"`
	PID           int               `json:"pid"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	DaemonRunning bool              `json:"daemon_running"`
	Cache         handlecache.Stats `json:"cache"`
}

// PruneData is returned by PRUNE.
type PruneData struct {
	Removed int `json:"removed"`
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
		Status: StatusOK,
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: StatusError,
		Error:  errMsg,
	}
}

// NewErrorResponseFromErr creates an error response that carries the
// platform error kind of err, when it has one.
func NewErrorResponseFromErr(err error) *Response {
	resp := NewErrorResponse(err.Error())
	if kind := platform.KindOf(err); kind != platform.KindUnknown {
		resp.Kind = kind.String()
	}
	return resp
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

// RemoteError is an ERROR response surfaced by the client. It matches the
// platform sentinels of its kind through errors.Is.
type RemoteError struct {
	Kind    platform.ErrorKind
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

func (e *RemoteError) Is(target error) bool {
	t, ok := target.(*platform.Error)
	if !ok || e.Kind == platform.KindUnknown {
		return false
	}
	return t.Kind == e.Kind
}

func (r *Response) remoteError() error {
	return &RemoteError{
		Kind:    platform.ParseErrorKind(r.Kind),
		Message: r.Error,
	}
}
