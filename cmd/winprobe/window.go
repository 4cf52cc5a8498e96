package main

import (
	"flag"
	"fmt"

	"github.com/1broseidon/winprobe/internal/config"
	"github.com/1broseidon/winprobe/internal/platform"
)

// parseArgs parses fs and rejects positional arguments. ok is false when the
// caller should return code.
func parseArgs(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(stderr, "%s takes no positional arguments\n", fs.Name())
		fs.Usage()
		return 2, false
	}
	return 0, true
}

func fail(err error) int {
	fmt.Fprintln(stderr, err)
	return 1
}

func usageError(fs *flag.FlagSet, err error) int {
	fmt.Fprintln(stderr, err)
	fs.Usage()
	return 2
}

func runFind(args []string) int {
	fs := flag.NewFlagSet("find", flag.ContinueOnError)
	fs.SetOutput(stderr)
	class := fs.String("class", "", "Exact window class name")
	title := fs.String("title", "", "Exact window title")
	jsonOut := fs.Bool("json", false, "Output JSON")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: winprobe find [--class NAME] [--title TITLE] [--json]")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Search the window list directly, bypassing every cache.")
		fmt.Fprintln(stderr, "At least one of --class and --title is required.")
	}
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	q := platform.Query{Class: *class, Title: *title}
	if err := q.Validate(); err != nil {
		return usageError(fs, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}
	env, err := openLocal(cfg, false)
	if err != nil {
		return fail(err)
	}
	defer env.Close()

	h, err := env.inspector.Find(q)
	if err != nil {
		return fail(err)
	}
	if err := printHandle(stdout, wantJSON(*jsonOut), h); err != nil {
		return fail(err)
	}
	return 0
}

func runResolve(args []string) int {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	class := fs.String("class", "", "Exact window class name")
	title := fs.String("title", "", "Exact window title")
	jsonOut := fs.Bool("json", false, "Output JSON")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: winprobe resolve [--class NAME] [--title TITLE] [--json]")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Resolve a window through the daemon's shared cache. When no daemon is")
		fmt.Fprintln(stderr, "running the lookup happens in this process.")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "A cached handle is returned as long as that window is alive, even if")
		fmt.Fprintln(stderr, "its title no longer matches. Use 'winprobe find' for a fresh search.")
	}
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	q := platform.Query{Class: *class, Title: *title}
	if err := q.Validate(); err != nil {
		return usageError(fs, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}
	env, err := openLocal(cfg, true)
	if err != nil {
		return fail(err)
	}
	defer env.Close()

	h, err := resolveShared(cfg, env, q)
	if err != nil {
		return fail(err)
	}
	if err := printHandle(stdout, wantJSON(*jsonOut), h); err != nil {
		return fail(err)
	}
	return 0
}

func runInfo(args []string) int {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var t targetFlags
	t.register(fs)
	jsonOut := fs.Bool("json", false, "Output JSON")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: winprobe info (--handle H | [--class NAME] [--title TITLE]) [--json]")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Show class, title, process and geometry of a window.")
	}
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if err := t.check(); err != nil {
		return usageError(fs, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}
	env, err := openLocal(cfg, true)
	if err != nil {
		return fail(err)
	}
	defer env.Close()

	w, err := infoShared(cfg, env, &t)
	if err != nil {
		return fail(err)
	}
	if err := printWindow(stdout, wantJSON(*jsonOut), w); err != nil {
		return fail(err)
	}
	return 0
}

func runForeground(args []string) int {
	fs := flag.NewFlagSet("foreground", flag.ContinueOnError)
	fs.SetOutput(stderr)
	handleOnly := fs.Bool("handle-only", false, "Print only the handle")
	jsonOut := fs.Bool("json", false, "Output JSON")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: winprobe foreground [--handle-only] [--json]")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Show the window that currently has input focus.")
	}
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}

	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}
	env, err := openLocal(cfg, false)
	if err != nil {
		return fail(err)
	}
	defer env.Close()

	h, err := env.inspector.Foreground()
	if err != nil {
		return fail(err)
	}
	asJSON := wantJSON(*jsonOut)
	if *handleOnly {
		if err := printHandle(stdout, asJSON, h); err != nil {
			return fail(err)
		}
		return 0
	}
	w, err := env.inspector.Info(h)
	if err != nil {
		return fail(err)
	}
	if err := printWindow(stdout, asJSON, w); err != nil {
		return fail(err)
	}
	return 0
}

type focusResult struct {
	handleResult
	Focused bool `json:"focused"`
}

func runFocus(args []string) int {
	fs := flag.NewFlagSet("focus", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var t targetFlags
	t.register(fs)
	jsonOut := fs.Bool("json", false, "Output JSON")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: winprobe focus (--handle H | [--class NAME] [--title TITLE]) [--json]")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Bring a window to the foreground.")
	}
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if err := t.check(); err != nil {
		return usageError(fs, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}
	env, err := openLocal(cfg, true)
	if err != nil {
		return fail(err)
	}
	defer env.Close()

	h, err := t.target(func(q platform.Query) (platform.Handle, error) {
		return resolveShared(cfg, env, q)
	})
	if err != nil {
		return fail(err)
	}
	if err := env.inspector.Focus(h); err != nil {
		return fail(err)
	}

	if wantJSON(*jsonOut) {
		if err := writeJSON(stdout, focusResult{handleResult: newHandleResult(h), Focused: env.inspector.IsForeground(h)}); err != nil {
			return fail(err)
		}
		return 0
	}
	fmt.Fprintf(stdout, "focused %s\n", h)
	return 0
}

type moveResult struct {
	handleResult
	Bounds platform.Rect `json:"bounds"`
}

func runMove(args []string) int {
	fs := flag.NewFlagSet("move", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var t targetFlags
	t.register(fs)
	x := fs.Int("x", 0, "Left edge in screen coordinates")
	y := fs.Int("y", 0, "Top edge in screen coordinates")
	width := fs.Int("width", 0, "Outer width in pixels (required)")
	height := fs.Int("height", 0, "Outer height in pixels (required)")
	jsonOut := fs.Bool("json", false, "Output JSON")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: winprobe move (--handle H | [--class NAME] [--title TITLE]) --x X --y Y --width W --height H [--json]")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Move and resize a window. The rectangle is the outer window bounds.")
	}
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if err := t.check(); err != nil {
		return usageError(fs, err)
	}
	if *width <= 0 || *height <= 0 {
		return usageError(fs, fmt.Errorf("--width and --height must be > 0"))
	}
	bounds := platform.Rect{X: *x, Y: *y, Width: *width, Height: *height}

	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}
	env, err := openLocal(cfg, true)
	if err != nil {
		return fail(err)
	}
	defer env.Close()

	h, err := t.target(func(q platform.Query) (platform.Handle, error) {
		return resolveShared(cfg, env, q)
	})
	if err != nil {
		return fail(err)
	}
	if err := env.inspector.Move(h, bounds); err != nil {
		return fail(err)
	}

	if wantJSON(*jsonOut) {
		if err := writeJSON(stdout, moveResult{handleResult: newHandleResult(h), Bounds: bounds}); err != nil {
			return fail(err)
		}
		return 0
	}
	fmt.Fprintf(stdout, "moved %s to %s\n", h, formatRect(bounds))
	return 0
}

type topmostResult struct {
	handleResult
	Topmost bool `json:"topmost"`
}

func printTopmostUsage() {
	fmt.Fprintln(stderr, "Usage: winprobe topmost <set|clear|toggle|get> (--handle H | [--class NAME] [--title TITLE]) [--json]")
	fmt.Fprintln(stderr, "")
	fmt.Fprintln(stderr, "Get or change the always-on-top state of a window.")
}

func runTopmost(args []string) int {
	if len(args) == 0 {
		printTopmostUsage()
		return 2
	}
	action := args[0]
	switch action {
	case "set", "clear", "toggle", "get":
	case "help", "-h", "--help":
		printTopmostUsage()
		return 0
	default:
		fmt.Fprintf(stderr, "Unknown topmost action: %s\n\n", action)
		printTopmostUsage()
		return 2
	}

	fs := flag.NewFlagSet("topmost "+action, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var t targetFlags
	t.register(fs)
	jsonOut := fs.Bool("json", false, "Output JSON")
	fs.Usage = printTopmostUsage
	if code, ok := parseArgs(fs, args[1:]); !ok {
		return code
	}
	if err := t.check(); err != nil {
		return usageError(fs, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}
	env, err := openLocal(cfg, true)
	if err != nil {
		return fail(err)
	}
	defer env.Close()

	h, err := t.target(func(q platform.Query) (platform.Handle, error) {
		return resolveShared(cfg, env, q)
	})
	if err != nil {
		return fail(err)
	}

	var state bool
	switch action {
	case "set":
		err = env.inspector.SetTopmost(h, true)
		state = true
	case "clear":
		err = env.inspector.SetTopmost(h, false)
	case "toggle":
		state, err = env.inspector.ToggleTopmost(h)
	case "get":
		state, err = env.inspector.Topmost(h)
	}
	if err != nil {
		return fail(err)
	}

	if wantJSON(*jsonOut) {
		if err := writeJSON(stdout, topmostResult{handleResult: newHandleResult(h), Topmost: state}); err != nil {
			return fail(err)
		}
		return 0
	}
	fmt.Fprintf(stdout, "%s topmost: %v\n", h, state)
	return 0
}
