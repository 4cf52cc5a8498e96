// Package platformtest provides an in-memory platform.Backend for tests.
package platformtest

import (
	"sync"

	"github.com/1broseidon/winprobe/internal/platform"
)

// FakeWindow is the mutable state of one window in a Fake.
type FakeWindow struct {
	Class       string
	Title       string
	PID         int
	Bounds      platform.Rect
	FrameBounds platform.Rect
	Client      platform.Rect
	Topmost     bool
}

// Fake is a concurrency-safe Backend whose windows live in memory. Windows
// are searched in creation order, newest first, mimicking a Z-order walk.
type Fake struct {
	mu         sync.Mutex
	next       platform.Handle
	windows    map[platform.Handle]*FakeWindow
	order      []platform.Handle
	foreground platform.Handle
	processes  map[int]string

	findCalls  int
	existCalls int

	// FindHook, if set, runs at the start of every FindWindow call outside the lock.
	FindHook func(class, title string)
}

var _ platform.Backend = (*Fake)(nil)

// NewFake returns an empty Fake. Handles start at 0x1000.
func NewFake() *Fake {
	return &Fake{
		next:      0x1000,
		windows:   make(map[platform.Handle]*FakeWindow),
		processes: make(map[int]string),
	}
}

// Create adds a window and returns its handle.
func (f *Fake) Create(w FakeWindow) platform.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	h := f.next
	cp := w
	f.windows[h] = &cp
	f.order = append(f.order, h)
	return h
}

// CreateWithHandle adds a window under a caller-chosen handle, replacing any
// window already using it. Useful to simulate handle reuse.
func (f *Fake) CreateWithHandle(h platform.Handle, w FakeWindow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.windows[h]; ok {
		f.removeLocked(h)
	}
	cp := w
	f.windows[h] = &cp
	f.order = append(f.order, h)
}

// Destroy removes a window. Its handle stops passing WindowExists.
func (f *Fake) Destroy(h platform.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeLocked(h)
}

func (f *Fake) removeLocked(h platform.Handle) {
	delete(f.windows, h)
	for i, o := range f.order {
		if o == h {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	if f.foreground == h {
		f.foreground = 0
	}
}

// SetTitle changes a live window's title.
func (f *Fake) SetTitle(h platform.Handle, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.windows[h]; ok {
		w.Title = title
	}
}

// SetProcessPath registers the executable path reported for pid.
func (f *Fake) SetProcessPath(pid int, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processes[pid] = path
}

// Window returns a copy of a window's state.
func (f *Fake) Window(h platform.Handle) (FakeWindow, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.windows[h]
	if !ok {
		return FakeWindow{}, false
	}
	return *w, true
}

// FindCalls returns how many times FindWindow has been called.
func (f *Fake) FindCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findCalls
}

// ExistCalls returns how many times WindowExists has been called.
func (f *Fake) ExistCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existCalls
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Close() error { return nil }

func (f *Fake) WindowExists(h platform.Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existCalls++
	_, ok := f.windows[h]
	return ok
}

func (f *Fake) FindWindow(class, title string) (platform.Handle, error) {
	if hook := f.FindHook; hook != nil {
		hook(class, title)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCalls++
	q := platform.Query{Class: class, Title: title}
	if err := q.Validate(); err != nil {
		return 0, err
	}
	for i := len(f.order) - 1; i >= 0; i-- {
		h := f.order[i]
		w := f.windows[h]
		if q.Matches(w.Class, w.Title) {
			return h, nil
		}
	}
	return 0, platform.NotFound(class, title)
}

func (f *Fake) ForegroundWindow() (platform.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.foreground == 0 {
		return 0, platform.CallFailed("GetForegroundWindow", 0, 0, nil)
	}
	return f.foreground, nil
}

func (f *Fake) SetForeground(h platform.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.windows[h]; !ok {
		return platform.WindowNotExist(h)
	}
	f.foreground = h
	return nil
}

func (f *Fake) ClassName(h platform.Handle) (string, error) {
	w, err := f.get(h)
	if err != nil {
		return "", err
	}
	return w.Class, nil
}

func (f *Fake) Title(h platform.Handle) (string, error) {
	w, err := f.get(h)
	if err != nil {
		return "", err
	}
	return w.Title, nil
}

func (f *Fake) WindowBounds(h platform.Handle) (platform.Rect, error) {
	w, err := f.get(h)
	if err != nil {
		return platform.Rect{}, err
	}
	return w.Bounds, nil
}

func (f *Fake) FrameBounds(h platform.Handle) (platform.Rect, error) {
	w, err := f.get(h)
	if err != nil {
		return platform.Rect{}, err
	}
	return w.FrameBounds, nil
}

func (f *Fake) ClientOrigin(h platform.Handle) (platform.Point, error) {
	w, err := f.get(h)
	if err != nil {
		return platform.Point{}, err
	}
	return platform.Point{X: w.Client.X, Y: w.Client.Y}, nil
}

func (f *Fake) ClientSize(h platform.Handle) (platform.Size, error) {
	w, err := f.get(h)
	if err != nil {
		return platform.Size{}, err
	}
	return platform.Size{Width: w.Client.Width, Height: w.Client.Height}, nil
}

func (f *Fake) ProcessID(h platform.Handle) (int, error) {
	w, err := f.get(h)
	if err != nil {
		return 0, err
	}
	if w.PID == 0 {
		return 0, platform.CallFailed("GetWindowThreadProcessId", h, 0, nil)
	}
	return w.PID, nil
}

func (f *Fake) ProcessPath(pid int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path, ok := f.processes[pid]
	if !ok {
		return "", platform.CallFailed("OpenProcess", 0, 87, nil)
	}
	return path, nil
}

func (f *Fake) Topmost(h platform.Handle) (bool, error) {
	w, err := f.get(h)
	if err != nil {
		return false, err
	}
	return w.Topmost, nil
}

func (f *Fake) SetTopmost(h platform.Handle, topmost bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.windows[h]
	if !ok {
		return platform.WindowNotExist(h)
	}
	w.Topmost = topmost
	return nil
}

// MoveResize shifts frame and client rectangles by the same delta as the outer bounds.
func (f *Fake) MoveResize(h platform.Handle, bounds platform.Rect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.windows[h]
	if !ok {
		return platform.WindowNotExist(h)
	}
	dx, dy := bounds.X-w.Bounds.X, bounds.Y-w.Bounds.Y
	dw, dh := bounds.Width-w.Bounds.Width, bounds.Height-w.Bounds.Height
	w.Bounds = bounds
	w.FrameBounds = platform.Rect{X: w.FrameBounds.X + dx, Y: w.FrameBounds.Y + dy, Width: w.FrameBounds.Width + dw, Height: w.FrameBounds.Height + dh}
	w.Client = platform.Rect{X: w.Client.X + dx, Y: w.Client.Y + dy, Width: w.Client.Width + dw, Height: w.Client.Height + dh}
	return nil
}

func (f *Fake) get(h platform.Handle) (FakeWindow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.windows[h]
	if !ok {
		return FakeWindow{}, platform.WindowNotExist(h)
	}
	return *w, nil
}
