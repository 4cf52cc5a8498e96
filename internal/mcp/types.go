package mcp

import (
	"github.com/1broseidon/winprobe/internal/handlecache"
	"github.com/1broseidon/winprobe/internal/platform"
)

// FindWindowInput is the input for the find_window tool.
type FindWindowInput struct {
	Class string `json:"class,omitempty" jsonschema:"Exact window class name. At least one of class or title is required."`
	Title string `json:"title,omitempty" jsonschema:"Exact window title. At least one of class or title is required."`
	// Fresh bypasses the handle cache.
	Fresh bool `json:"fresh,omitempty" jsonschema:"When true, search the window list directly instead of using the handle cache (default: false)"`
}

// FindWindowOutput is the output for the find_window tool.
type FindWindowOutput struct {
	Handle    uint64 `json:"handle"`
	HandleHex string `json:"handle_hex"`
}

// WindowInfoInput is the input for the window_info tool.
type WindowInfoInput struct {
	Handle uint64 `json:"handle,omitempty" jsonschema:"Window handle as returned by find_window. Takes precedence over class/title."`
	Class  string `json:"class,omitempty" jsonschema:"Exact window class name (X11 WM_CLASS class or instance; Win32 class name)"`
	Title  string `json:"title,omitempty" jsonschema:"Exact window title"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	Handle uint64 `json:"handle,omitempty" jsonschema:"Window handle as returned by find_window. Takes precedence over class/title."`
	Class  string `json:"class,omitempty" jsonschema:"Exact window class name"`
	Title  string `json:"title,omitempty" jsonschema:"Exact window title"`
	X      int    `json:"x" jsonschema:"required,Left edge in screen coordinates"`
	Y      int    `json:"y" jsonschema:"required,Top edge in screen coordinates"`
	Width  int    `json:"width" jsonschema:"required,Outer width in pixels (must be > 0)"`
	Height int    `json:"height" jsonschema:"required,Outer height in pixels (must be > 0)"`
}

// MoveWindowOutput is the output for the move_window tool.
type MoveWindowOutput struct {
	Handle uint64        `json:"handle"`
	Bounds platform.Rect `json:"bounds"`
}

// SetTopmostInput is the input for the set_topmost tool.
type SetTopmostInput struct {
	Handle uint64 `json:"handle,omitempty" jsonschema:"Window handle as returned by find_window. Takes precedence over class/title."`
	Class  string `json:"class,omitempty" jsonschema:"Exact window class name"`
	Title  string `json:"title,omitempty" jsonschema:"Exact window title"`
	State  string `json:"state" jsonschema:"required,One of: on, off, toggle"`
}

// SetTopmostOutput is the output for the set_topmost tool.
type SetTopmostOutput struct {
	Handle  uint64 `json:"handle"`
	Topmost bool   `json:"topmost"`
}

// FocusWindowInput is the input for the focus_window tool.
type FocusWindowInput struct {
	Handle uint64 `json:"handle,omitempty" jsonschema:"Window handle as returned by find_window. Takes precedence over class/title."`
	Class  string `json:"class,omitempty" jsonschema:"Exact window class name"`
	Title  string `json:"title,omitempty" jsonschema:"Exact window title"`
}

// FocusWindowOutput is the output for the focus_window tool.
type FocusWindowOutput struct {
	Handle  uint64 `json:"handle"`
	Focused bool   `json:"focused"`
}

// ForegroundWindowInput is the input for the foreground_window tool.
type ForegroundWindowInput struct{}

// CacheStatsInput is the input for the cache_stats tool.
type CacheStatsInput struct {
	Prune bool `json:"prune,omitempty" jsonschema:"When true, drop entries for closed windows before reporting (default: false)"`
}

// CacheStatsOutput is the output for the cache_stats tool.
type CacheStatsOutput struct {
	Cache    handlecache.Stats `json:"cache"`
	HitRatio float64           `json:"hit_ratio"`
	Pruned   int               `json:"pruned_now,omitempty"`
}

// WindowInfoOutput is the output for the window_info and foreground_window tools.
type WindowInfoOutput struct {
	Handle      uint64        `json:"handle"`
	HandleHex   string        `json:"handle_hex"`
	Class       string        `json:"class"`
	Title       string        `json:"title"`
	PID         int           `json:"pid"`
	ProcessPath string        `json:"process_path,omitempty"`
	Bounds      platform.Rect `json:"bounds"`
	FrameBounds platform.Rect `json:"frame_bounds"`
	Client      platform.Rect `json:"client"`
	Topmost     bool          `json:"topmost"`
	Foreground  bool          `json:"foreground"`
}

func windowInfoOutput(w platform.Window) WindowInfoOutput {
	return WindowInfoOutput{
		Handle:      uint64(w.Handle),
		HandleHex:   w.Handle.String(),
		Class:       w.Class,
		Title:       w.Title,
		PID:         w.PID,
		ProcessPath: w.ProcessPath,
		Bounds:      w.Bounds,
		FrameBounds: w.FrameBounds,
		Client:      w.Client,
		Topmost:     w.Topmost,
		Foreground:  w.Foreground,
	}
}
