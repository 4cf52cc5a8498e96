package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/1broseidon/winprobe/internal/platform"
)

var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// wantJSON reports whether command output should be JSON: always when forced,
// otherwise whenever stdout is piped or redirected.
func wantJSON(forced bool) bool {
	return forced || !stdoutIsTerminal()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type handleResult struct {
	Handle    uint64 `json:"handle"`
	HandleHex string `json:"handle_hex"`
}

func newHandleResult(h platform.Handle) handleResult {
	return handleResult{Handle: uint64(h), HandleHex: h.String()}
}

func printHandle(w io.Writer, asJSON bool, h platform.Handle) error {
	if asJSON {
		return writeJSON(w, newHandleResult(h))
	}
	_, err := fmt.Fprintln(w, h)
	return err
}

func formatRect(r platform.Rect) string {
	return fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.Width, r.Height)
}

func printWindow(w io.Writer, asJSON bool, win platform.Window) error {
	if asJSON {
		return writeJSON(w, win)
	}
	fmt.Fprintf(w, "handle:       %s\n", win.Handle)
	fmt.Fprintf(w, "class:        %s\n", win.Class)
	fmt.Fprintf(w, "title:        %s\n", win.Title)
	fmt.Fprintf(w, "pid:          %d\n", win.PID)
	if win.ProcessPath != "" {
		fmt.Fprintf(w, "process_path: %s\n", win.ProcessPath)
	}
	fmt.Fprintf(w, "bounds:       %s\n", formatRect(win.Bounds))
	fmt.Fprintf(w, "frame:        %s\n", formatRect(win.FrameBounds))
	fmt.Fprintf(w, "client:       %s\n", formatRect(win.Client))
	fmt.Fprintf(w, "topmost:      %v\n", win.Topmost)
	_, err := fmt.Fprintf(w, "foreground:   %v\n", win.Foreground)
	return err
}

// parseHandle accepts decimal or 0x-prefixed hexadecimal handles.
func parseHandle(s string) (platform.Handle, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("handle is empty")
	}
	if strings.HasPrefix(s, "0X") {
		s = "0x" + s[2:]
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid handle %q", s)
	}
	if v == 0 {
		return 0, fmt.Errorf("handle must be non-zero")
	}
	return platform.Handle(v), nil
}

// targetFlags selects a window either by handle or by class/title.
type targetFlags struct {
	handle string
	class  string
	title  string
}

func (t *targetFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&t.handle, "handle", "", "Window handle (decimal or 0x hex)")
	fs.StringVar(&t.class, "class", "", "Exact window class name")
	fs.StringVar(&t.title, "title", "", "Exact window title")
}

func (t *targetFlags) query() platform.Query {
	return platform.Query{Class: t.class, Title: t.title}
}

// check validates the flag combination without touching the window system.
func (t *targetFlags) check() error {
	if t.handle != "" {
		if t.class != "" || t.title != "" {
			return fmt.Errorf("--handle cannot be combined with --class or --title")
		}
		_, err := parseHandle(t.handle)
		return err
	}
	return t.query().Validate()
}

// target returns the addressed handle, resolving class/title through resolve.
func (t *targetFlags) target(resolve func(platform.Query) (platform.Handle, error)) (platform.Handle, error) {
	if t.handle != "" {
		return parseHandle(t.handle)
	}
	return resolve(t.query())
}
