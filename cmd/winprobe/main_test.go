package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/winprobe/internal/config"
	"github.com/1broseidon/winprobe/internal/ipc"
	"github.com/1broseidon/winprobe/internal/platform"
	"github.com/1broseidon/winprobe/internal/platform/platformtest"
)

type cliHarness struct {
	fake       *platformtest.Fake
	out        *bytes.Buffer
	errOut     *bytes.Buffer
	socketPath string
	configPath string
}

// newCLI points the CLI at a fake backend, a private config file and a
// socket path no daemon listens on.
func newCLI(t *testing.T) *cliHarness {
	t.Helper()

	// Unix socket paths are length limited; t.TempDir can be too deep.
	sockDir, err := os.MkdirTemp("", "wp")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(sockDir) })

	h := &cliHarness{
		fake:       platformtest.NewFake(),
		out:        &bytes.Buffer{},
		errOut:     &bytes.Buffer{},
		socketPath: filepath.Join(sockDir, "d.sock"),
		configPath: filepath.Join(t.TempDir(), "config.yaml"),
	}
	data := strings.Join([]string{
		"cache:",
		"  capacity: 8",
		"logging:",
		"  console: false",
		"ipc:",
		"  socket_path: " + h.socketPath,
		"  timeout: 1s",
		"",
	}, "\n")
	if err := os.WriteFile(h.configPath, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(config.EnvConfigPath, h.configPath)

	prevOut, prevErr, prevOpen, prevTTY := stdout, stderr, openBackend, stdoutIsTerminal
	stdout, stderr = h.out, h.errOut
	openBackend = func(*config.Config) (platform.Backend, error) { return h.fake, nil }
	stdoutIsTerminal = func() bool { return false }
	t.Cleanup(func() {
		stdout, stderr, openBackend, stdoutIsTerminal = prevOut, prevErr, prevOpen, prevTTY
	})
	return h
}

func (h *cliHarness) decode(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(h.out.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", h.out.String(), err)
	}
	h.out.Reset()
}

func TestRunUnknownCommand(t *testing.T) {
	h := newCLI(t)
	if rc := run("tile", nil); rc != 2 {
		t.Fatalf("rc=%d, want 2", rc)
	}
	if !strings.Contains(h.errOut.String(), "Unknown command: tile") {
		t.Fatalf("stderr = %q", h.errOut.String())
	}
	if !strings.Contains(h.errOut.String(), "Usage: winprobe <command>") {
		t.Fatalf("usage missing from stderr: %q", h.errOut.String())
	}
	if h.out.Len() != 0 {
		t.Fatalf("stdout = %q, want empty", h.out.String())
	}
}

func TestRunHelpWritesUsageToStdout(t *testing.T) {
	h := newCLI(t)
	if rc := run("help", nil); rc != 0 {
		t.Fatalf("rc=%d, want 0", rc)
	}
	if !strings.Contains(h.out.String(), "Usage: winprobe <command>") {
		t.Fatalf("stdout = %q", h.out.String())
	}
}

func TestFindRequiresClassOrTitle(t *testing.T) {
	h := newCLI(t)
	if rc := runFind(nil); rc != 2 {
		t.Fatalf("rc=%d, want 2", rc)
	}
	if h.fake.FindCalls() != 0 {
		t.Fatalf("backend searched %d times for an empty query", h.fake.FindCalls())
	}
}

func TestFindOutputs(t *testing.T) {
	h := newCLI(t)
	want := h.fake.Create(platformtest.FakeWindow{Class: "Notepad", Title: "a.txt - Notepad"})

	if rc := runFind([]string{"--class", "Notepad"}); rc != 0 {
		t.Fatalf("rc=%d, stderr=%q", rc, h.errOut.String())
	}
	var res handleResult
	h.decode(t, &res)
	if platform.Handle(res.Handle) != want || res.HandleHex != want.String() {
		t.Fatalf("result = %+v, want %s", res, want)
	}

	stdoutIsTerminal = func() bool { return true }
	if rc := runFind([]string{"--title", "a.txt - Notepad"}); rc != 0 {
		t.Fatalf("rc=%d, stderr=%q", rc, h.errOut.String())
	}
	if got := h.out.String(); got != want.String()+"\n" {
		t.Fatalf("human output = %q, want %q", got, want.String()+"\n")
	}
}

func TestFindNotFound(t *testing.T) {
	h := newCLI(t)
	if rc := runFind([]string{"--class", "Calculator"}); rc != 1 {
		t.Fatalf("rc=%d, want 1", rc)
	}
	if h.errOut.Len() == 0 {
		t.Fatalf("expected an error message on stderr")
	}
}

func TestResolveWithoutDaemonFallsBackToLocal(t *testing.T) {
	h := newCLI(t)
	want := h.fake.Create(platformtest.FakeWindow{Class: "kitty"})

	if rc := runResolve([]string{"--class", "kitty", "--json"}); rc != 0 {
		t.Fatalf("rc=%d, stderr=%q", rc, h.errOut.String())
	}
	var res handleResult
	h.decode(t, &res)
	if platform.Handle(res.Handle) != want {
		t.Fatalf("handle = %#x, want %s", res.Handle, want)
	}
}

func TestResolveThroughDaemonSharesCache(t *testing.T) {
	h := newCLI(t)
	want := h.fake.Create(platformtest.FakeWindow{Class: "Notepad", Title: "a.txt - Notepad"})

	client := h.startDaemon(t)

	for n := 0; n < 3; n++ {
		if rc := runResolve([]string{"--class", "Notepad"}); rc != 0 {
			t.Fatalf("resolve #%d rc=%d, stderr=%q", n, rc, h.errOut.String())
		}
		var res handleResult
		h.decode(t, &res)
		if platform.Handle(res.Handle) != want {
			t.Fatalf("handle = %#x, want %s", res.Handle, want)
		}
	}
	if h.fake.FindCalls() != 1 {
		t.Fatalf("FindWindow called %d times across processes, want 1", h.fake.FindCalls())
	}

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Cache.Hits != 2 || status.Cache.Misses != 1 {
		t.Fatalf("cache stats = %+v", status.Cache)
	}
}

// startDaemon serves the daemon on the harness socket until the test ends
// and returns a client once it answers.
func (h *cliHarness) startDaemon(t *testing.T) *ipc.Client {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serveDaemon(ctx, cfg) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("serveDaemon: %v", err)
		}
	})

	client, err := daemonClient(cfg)
	if err != nil {
		t.Fatalf("daemonClient: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for client.Ping() != nil {
		if time.Now().After(deadline) {
			t.Fatalf("daemon did not come up on %s", h.socketPath)
		}
		time.Sleep(10 * time.Millisecond)
	}
	return client
}

func TestInfoThroughDaemonUsesSharedCache(t *testing.T) {
	h := newCLI(t)
	want := h.fake.Create(platformtest.FakeWindow{Class: "Notepad", Title: "a.txt - Notepad", PID: 77})
	client := h.startDaemon(t)

	for n := 0; n < 2; n++ {
		if rc := runInfo([]string{"--class", "Notepad"}); rc != 0 {
			t.Fatalf("info #%d rc=%d, stderr=%q", n, rc, h.errOut.String())
		}
		var got platform.Window
		h.decode(t, &got)
		if got.Handle != want || got.PID != 77 {
			t.Fatalf("info = %+v", got)
		}
	}
	if h.fake.FindCalls() != 1 {
		t.Fatalf("FindWindow called %d times, want 1", h.fake.FindCalls())
	}
	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Cache.Hits != 1 || status.Cache.Misses != 1 {
		t.Fatalf("cache stats = %+v", status.Cache)
	}

	h.fake.Destroy(want)
	if rc := runInfo([]string{"--handle", want.String()}); rc != 1 {
		t.Fatalf("dead handle rc=%d, want 1", rc)
	}
}

func TestInfoTargetFlags(t *testing.T) {
	h := newCLI(t)
	win := h.fake.Create(platformtest.FakeWindow{
		Class:  "Notepad",
		Title:  "a.txt - Notepad",
		PID:    4242,
		Bounds: platform.Rect{X: 10, Y: 20, Width: 300, Height: 200},
	})

	if rc := runInfo([]string{"--handle", win.String()}); rc != 0 {
		t.Fatalf("rc=%d, stderr=%q", rc, h.errOut.String())
	}
	var got platform.Window
	h.decode(t, &got)
	if got.Handle != win || got.Class != "Notepad" || got.PID != 4242 {
		t.Fatalf("info = %+v", got)
	}

	if rc := runInfo([]string{"--handle", win.String(), "--class", "Notepad"}); rc != 2 {
		t.Fatalf("handle plus class rc=%d, want 2", rc)
	}
	if rc := runInfo(nil); rc != 2 {
		t.Fatalf("no target rc=%d, want 2", rc)
	}

	h.fake.Destroy(win)
	if rc := runInfo([]string{"--handle", win.String()}); rc != 1 {
		t.Fatalf("dead handle rc=%d, want 1", rc)
	}
}

func TestMove(t *testing.T) {
	h := newCLI(t)
	win := h.fake.Create(platformtest.FakeWindow{Class: "kitty"})

	if rc := runMove([]string{"--class", "kitty", "--width", "0", "--height", "10"}); rc != 2 {
		t.Fatalf("zero width rc=%d, want 2", rc)
	}

	args := []string{"--class", "kitty", "--x", "5", "--y", "6", "--width", "640", "--height", "480"}
	if rc := runMove(args); rc != 0 {
		t.Fatalf("rc=%d, stderr=%q", rc, h.errOut.String())
	}
	want := platform.Rect{X: 5, Y: 6, Width: 640, Height: 480}
	fw, _ := h.fake.Window(win)
	if fw.Bounds != want {
		t.Fatalf("bounds = %+v, want %+v", fw.Bounds, want)
	}
	var res moveResult
	h.decode(t, &res)
	if res.Bounds != want || platform.Handle(res.Handle) != win {
		t.Fatalf("result = %+v", res)
	}
}

func TestTopmost(t *testing.T) {
	h := newCLI(t)
	win := h.fake.Create(platformtest.FakeWindow{Class: "kitty"})

	steps := []struct {
		action string
		want   bool
	}{
		{action: "get", want: false},
		{action: "toggle", want: true},
		{action: "get", want: true},
		{action: "clear", want: false},
		{action: "set", want: true},
	}
	for _, step := range steps {
		if rc := runTopmost([]string{step.action, "--class", "kitty"}); rc != 0 {
			t.Fatalf("%s rc=%d, stderr=%q", step.action, rc, h.errOut.String())
		}
		var res topmostResult
		h.decode(t, &res)
		if res.Topmost != step.want {
			t.Fatalf("%s topmost = %v, want %v", step.action, res.Topmost, step.want)
		}
	}
	if fw, _ := h.fake.Window(win); !fw.Topmost {
		t.Fatalf("window should be topmost")
	}

	if rc := runTopmost([]string{"flip", "--class", "kitty"}); rc != 2 {
		t.Fatalf("unknown action rc=%d, want 2", rc)
	}
}

func TestFocusAndForeground(t *testing.T) {
	h := newCLI(t)
	win := h.fake.Create(platformtest.FakeWindow{Class: "kitty"})

	if rc := runForeground(nil); rc != 1 {
		t.Fatalf("foreground with nothing focused rc=%d, want 1", rc)
	}
	if rc := runFocus([]string{"--class", "kitty"}); rc != 0 {
		t.Fatalf("focus rc=%d, stderr=%q", rc, h.errOut.String())
	}
	var fr focusResult
	h.decode(t, &fr)
	if !fr.Focused || platform.Handle(fr.Handle) != win {
		t.Fatalf("focus result = %+v", fr)
	}

	if rc := runForeground([]string{"--handle-only"}); rc != 0 {
		t.Fatalf("foreground rc=%d, stderr=%q", rc, h.errOut.String())
	}
	var res handleResult
	h.decode(t, &res)
	if platform.Handle(res.Handle) != win {
		t.Fatalf("foreground = %#x, want %s", res.Handle, win)
	}
}

func TestStatusWithoutDaemon(t *testing.T) {
	h := newCLI(t)
	if rc := runStatus(nil); rc != 1 {
		t.Fatalf("rc=%d, want 1", rc)
	}
	if !strings.Contains(h.errOut.String(), "is the daemon running?") {
		t.Fatalf("stderr = %q", h.errOut.String())
	}
}

func TestConfigCommands(t *testing.T) {
	h := newCLI(t)

	if rc := runConfig([]string{"path"}); rc != 0 {
		t.Fatalf("path rc=%d", rc)
	}
	if got := strings.TrimSpace(h.out.String()); got != h.configPath {
		t.Fatalf("config path = %q, want %q", got, h.configPath)
	}
	h.out.Reset()

	if rc := runConfig([]string{"validate"}); rc != 0 {
		t.Fatalf("validate rc=%d, stderr=%q", rc, h.errOut.String())
	}
	h.out.Reset()

	if rc := runConfig([]string{"explain", "cache.capacity"}); rc != 0 {
		t.Fatalf("explain rc=%d, stderr=%q", rc, h.errOut.String())
	}
	out := h.out.String()
	if !strings.Contains(out, "source: file:"+h.configPath+":2:") || !strings.Contains(out, "value: 8") {
		t.Fatalf("explain output = %q", out)
	}
	h.out.Reset()

	if rc := runConfig([]string{"print", "--defaults"}); rc != 0 {
		t.Fatalf("print rc=%d", rc)
	}
	if !strings.Contains(h.out.String(), "sweep_interval: 30s") {
		t.Fatalf("print output = %q", h.out.String())
	}

	if rc := runConfig([]string{"bogus"}); rc != 2 {
		t.Fatalf("unknown subcommand rc=%d, want 2", rc)
	}
}

func TestParseHandle(t *testing.T) {
	tests := []struct {
		in      string
		want    platform.Handle
		wantErr bool
	}{
		{in: "4096", want: 0x1000},
		{in: "0x1000", want: 0x1000},
		{in: "0X1A", want: 0x1A},
		{in: " 0x2b ", want: 0x2B},
		{in: "", wantErr: true},
		{in: "0", wantErr: true},
		{in: "window", wantErr: true},
		{in: "-5", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseHandle(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseHandle(%q) = %s, want error", tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("parseHandle(%q) = %s, %v; want %s", tt.in, got, err, tt.want)
		}
	}
}

func TestPrintWindowHuman(t *testing.T) {
	var buf bytes.Buffer
	w := platform.Window{
		Handle: 0x1A,
		Class:  "Notepad",
		Title:  "a.txt - Notepad",
		Bounds: platform.Rect{X: 1, Y: 2, Width: 3, Height: 4},
	}
	if err := printWindow(&buf, false, w); err != nil {
		t.Fatalf("printWindow: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"handle:       0x1A\n", "bounds:       1,2 3x4\n", "foreground:   false\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "process_path") {
		t.Fatalf("empty process path should be omitted:\n%s", out)
	}
}
