package platform

import "fmt"

// Handle is an opaque, platform-defined window identifier. A handle is not
// stable across window destruction: the platform may hand the same value to
// an unrelated window later.
type Handle uintptr

func (h Handle) String() string {
	return fmt.Sprintf("0x%X", uintptr(h))
}

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is a position in screen coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	Handle      Handle `json:"handle"`
	Class       string `json:"class"`
	Title       string `json:"title"`
	PID         int    `json:"pid"`
	ProcessPath string `json:"process_path,omitempty"`
	Bounds      Rect   `json:"bounds"`
	FrameBounds Rect   `json:"frame_bounds"`
	Client      Rect   `json:"client"`
	Topmost     bool   `json:"topmost"`
	Foreground  bool   `json:"foreground"`
}

// LivenessChecker reports whether a handle still refers to a live window.
// Implementations never fail; invalid or dead handles report false.
type LivenessChecker interface {
	WindowExists(h Handle) bool
}

// Finder locates the first live window matching a class and/or title. An
// empty argument matches any value, but both may not be empty.
type Finder interface {
	FindWindow(class, title string) (Handle, error)
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	LivenessChecker
	Finder

	Name() string
	ForegroundWindow() (Handle, error)
	SetForeground(h Handle) error
	ClassName(h Handle) (string, error)
	Title(h Handle) (string, error)
	// WindowBounds includes any drop shadow or invisible resize border.
	WindowBounds(h Handle) (Rect, error)
	// FrameBounds is the visible frame, matching what screenshot tools report.
	FrameBounds(h Handle) (Rect, error)
	ClientOrigin(h Handle) (Point, error)
	ClientSize(h Handle) (Size, error)
	ProcessID(h Handle) (int, error)
	ProcessPath(pid int) (string, error)
	Topmost(h Handle) (bool, error)
	SetTopmost(h Handle, topmost bool) error
	MoveResize(h Handle, bounds Rect) error
	Close() error
}

// OpenOptions configures native backend selection.
type OpenOptions struct {
	// Display overrides $DISPLAY for the X11 backend. Ignored elsewhere.
	Display string
}

// Open returns the native backend for the running OS.
func Open(opts OpenOptions) (Backend, error) {
	return openNative(opts)
}
