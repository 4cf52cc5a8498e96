package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/1broseidon/winprobe/internal/handlecache"
	"github.com/1broseidon/winprobe/internal/inspect"
	"github.com/1broseidon/winprobe/internal/platform"
	"github.com/1broseidon/winprobe/internal/platform/platformtest"
)

// shortSocketPath keeps the path under the sun_path limit on macOS.
func shortSocketPath(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "wp")
	if err != nil {
		t.Fatalf("mkdir temp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func startServer(t *testing.T) (*Server, *platformtest.Fake, *Client) {
	t.Helper()
	fake := platformtest.NewFake()
	cache, err := handlecache.NewForBackend(fake, handlecache.WithCapacity(4))
	if err != nil {
		t.Fatalf("NewForBackend: %v", err)
	}
	in := inspect.New(fake, cache, zerolog.Nop())

	path := shortSocketPath(t)
	srv, err := NewServer(in, ServerConfig{SocketPath: path, Timeout: time.Second, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv, fake, NewClient(path, time.Second)
}

func TestResolveThroughDaemonUsesSharedCache(t *testing.T) {
	_, fake, client := startServer(t)
	h := fake.Create(platformtest.FakeWindow{Class: "Notepad", Title: "a.txt - Notepad"})

	for i := 0; i < 3; i++ {
		got, err := client.Resolve(platform.Query{Class: "Notepad"})
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got != h {
			t.Fatalf("Resolve = %s, want %s", got, h)
		}
	}
	if fake.FindCalls() != 1 {
		t.Fatalf("FindWindow called %d times, want 1", fake.FindCalls())
	}

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if !status.DaemonRunning || status.Backend != "fake" {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.Cache.Hits != 2 || status.Cache.Misses != 1 || status.Cache.Capacity != 4 {
		t.Fatalf("unexpected cache stats %+v", status.Cache)
	}
}

func TestErrorKindsSurviveTheWire(t *testing.T) {
	_, fake, client := startServer(t)

	_, err := client.Resolve(platform.Query{})
	if !errors.Is(err, platform.ErrInvalidQuery) {
		t.Fatalf("Resolve(empty) error = %v, want ErrInvalidQuery", err)
	}

	_, err = client.Resolve(platform.Query{Class: "Calculator"})
	if !errors.Is(err, platform.ErrNotFound) {
		t.Fatalf("Resolve(missing) error = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), `"Calculator"`) {
		t.Fatalf("expected message to name the class, got %q", err.Error())
	}

	h := fake.Create(platformtest.FakeWindow{Class: "Notepad"})
	fake.Destroy(h)
	_, err = client.Info(h)
	if !errors.Is(err, platform.ErrWindowNotExist) {
		t.Fatalf("Info(dead) error = %v, want ErrWindowNotExist", err)
	}
	if errors.Is(err, platform.ErrNotFound) {
		t.Fatalf("kinds must not cross-match")
	}
}

func TestInfo(t *testing.T) {
	_, fake, client := startServer(t)
	h := fake.Create(platformtest.FakeWindow{
		Class:  "Notepad",
		Title:  "a.txt - Notepad",
		PID:    77,
		Bounds: platform.Rect{X: 10, Y: 20, Width: 300, Height: 200},
	})
	fake.SetProcessPath(77, "/usr/bin/notepad")

	byHandle, err := client.Info(h)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	byQuery, err := client.InfoByQuery(platform.Query{Title: "a.txt - Notepad"})
	if err != nil {
		t.Fatalf("InfoByQuery: %v", err)
	}
	if *byHandle != *byQuery {
		t.Fatalf("info mismatch:\n%+v\n%+v", byHandle, byQuery)
	}
	if byHandle.Handle != h || byHandle.ProcessPath != "/usr/bin/notepad" || byHandle.Bounds.Width != 300 {
		t.Fatalf("unexpected info %+v", byHandle)
	}
}

func TestPruneAndPurge(t *testing.T) {
	_, fake, client := startServer(t)
	a := fake.Create(platformtest.FakeWindow{Title: "a"})
	fake.Create(platformtest.FakeWindow{Title: "b"})

	for _, title := range []string{"a", "b"} {
		if _, err := client.Resolve(platform.Query{Title: title}); err != nil {
			t.Fatalf("Resolve %q: %v", title, err)
		}
	}
	fake.Destroy(a)

	removed, err := client.Prune()
	if err != nil || removed != 1 {
		t.Fatalf("Prune = %d, %v; want 1", removed, err)
	}
	if err := client.Purge(); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Cache.Len != 0 {
		t.Fatalf("cache len = %d after purge, want 0", status.Cache.Len)
	}
}

func TestUnknownCommandAndBadRequest(t *testing.T) {
	srv, _, _ := startServer(t)

	send := func(line string) *Response {
		t.Helper()
		conn, err := net.Dial("unix", srv.SocketPath())
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer conn.Close()
		if _, err := conn.Write([]byte(line + "\n")); err != nil {
			t.Fatalf("write: %v", err)
		}
		data, err := bufio.NewReader(conn).ReadBytes('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var resp Response
		if err := json.Unmarshal(data, &resp); err != nil {
			t.Fatalf("parse: %v", err)
		}
		return &resp
	}

	resp := send(`{"command":"TILE"}`)
	if resp.Status != StatusError || !strings.Contains(resp.Error, "unknown command") {
		t.Fatalf("unexpected response %+v", resp)
	}

	resp = send(`not json`)
	if resp.Status != StatusError || !strings.Contains(resp.Error, "invalid request") {
		t.Fatalf("unexpected response %+v", resp)
	}

	resp = send(`{"command":"RESOLVE","payload":{"class":"x"}}`)
	if resp.Status != StatusError || resp.Kind != "not_found" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestStartRefusesSecondDaemon(t *testing.T) {
	srv, fake, _ := startServer(t)
	cache, _ := handlecache.NewForBackend(fake)
	second, err := NewServer(inspect.New(fake, cache, zerolog.Nop()), ServerConfig{SocketPath: srv.SocketPath()})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if err := second.Start(); !errors.Is(err, ErrDaemonRunning) {
		t.Fatalf("Start error = %v, want ErrDaemonRunning", err)
	}
}

func TestClientReportsConnectError(t *testing.T) {
	client := NewClient(shortSocketPath(t), 100*time.Millisecond)
	_, err := client.Resolve(platform.Query{Class: "Notepad"})
	var cerr *ConnectError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want ConnectError", err)
	}
}

func TestNewErrorResponseFromErr(t *testing.T) {
	resp := NewErrorResponseFromErr(platform.NotFound("Notepad", ""))
	if resp.Kind != "not_found" {
		t.Fatalf("Kind = %q, want not_found", resp.Kind)
	}
	resp = NewErrorResponseFromErr(errors.New("plain"))
	if resp.Kind != "" {
		t.Fatalf("Kind = %q for plain error, want empty", resp.Kind)
	}
	if errors.Is(resp.remoteError(), platform.ErrNotFound) {
		t.Fatalf("unknown kind must not match sentinels")
	}
}
