//go:build linux

package platform

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/winprobe/internal/x11"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

func openNative(opts OpenOptions) (Backend, error) {
	return NewLinuxBackendFromDisplay(opts.Display)
}

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewLinuxBackendFromDisplay opens a fresh X11 connection. An empty display uses $DISPLAY.
func NewLinuxBackendFromDisplay(display string) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, CallFailed("XOpenDisplay", 0, 0, fmt.Errorf("failed to connect to X11: %w", err))
	}
	return &LinuxBackend{conn: conn}, nil
}

func (b *LinuxBackend) Name() string { return "x11" }

// Close closes the underlying X11 connection.
func (b *LinuxBackend) Close() error {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
	return nil
}

func (b *LinuxBackend) WindowExists(h Handle) bool {
	if b == nil || b.conn == nil || !fitsXID(h) {
		return false
	}
	return b.conn.WindowExists(xproto.Window(h))
}

func (b *LinuxBackend) FindWindow(class, title string) (Handle, error) {
	if err := (Query{Class: class, Title: title}).Validate(); err != nil {
		return 0, err
	}
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	win, ok, err := conn.FindWindow(class, title)
	if err != nil {
		return 0, CallFailed("_NET_CLIENT_LIST", 0, 0, err)
	}
	if !ok {
		return 0, NotFound(class, title)
	}
	return Handle(win), nil
}

func (b *LinuxBackend) ForegroundWindow() (Handle, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}
	win, err := conn.GetActiveWindow()
	if err != nil {
		return 0, CallFailed("_NET_ACTIVE_WINDOW", 0, 0, err)
	}
	return Handle(win), nil
}

func (b *LinuxBackend) SetForeground(h Handle) error {
	conn, err := b.live(h)
	if err != nil {
		return err
	}
	if err := conn.FocusWindow(xproto.Window(h)); err != nil {
		return CallFailed("_NET_ACTIVE_WINDOW", h, 0, err)
	}
	return nil
}

func (b *LinuxBackend) ClassName(h Handle) (string, error) {
	conn, err := b.live(h)
	if err != nil {
		return "", err
	}
	class, err := conn.WindowClass(xproto.Window(h))
	if err != nil {
		return "", CallFailed("WM_CLASS", h, 0, err)
	}
	return class, nil
}

func (b *LinuxBackend) Title(h Handle) (string, error) {
	conn, err := b.live(h)
	if err != nil {
		return "", err
	}
	return conn.WindowTitle(xproto.Window(h)), nil
}

// WindowBounds returns the client rectangle grown by the WM frame extents.
func (b *LinuxBackend) WindowBounds(h Handle) (Rect, error) {
	conn, err := b.live(h)
	if err != nil {
		return Rect{}, err
	}
	geom, err := conn.ClientGeometry(xproto.Window(h))
	if err != nil {
		return Rect{}, CallFailed("GetGeometry", h, 0, err)
	}
	ext := conn.GetFrameExtents(xproto.Window(h))
	return Rect{
		X:      geom.X - ext.Left,
		Y:      geom.Y - ext.Top,
		Width:  geom.Width + ext.Left + ext.Right,
		Height: geom.Height + ext.Top + ext.Bottom,
	}, nil
}

// FrameBounds removes client-side shadow margins from WindowBounds.
func (b *LinuxBackend) FrameBounds(h Handle) (Rect, error) {
	r, err := b.WindowBounds(h)
	if err != nil {
		return Rect{}, err
	}
	shadow := b.conn.GetShadowExtents(xproto.Window(h))
	return Rect{
		X:      r.X + shadow.Left,
		Y:      r.Y + shadow.Top,
		Width:  r.Width - shadow.Left - shadow.Right,
		Height: r.Height - shadow.Top - shadow.Bottom,
	}, nil
}

func (b *LinuxBackend) ClientOrigin(h Handle) (Point, error) {
	conn, err := b.live(h)
	if err != nil {
		return Point{}, err
	}
	geom, err := conn.ClientGeometry(xproto.Window(h))
	if err != nil {
		return Point{}, CallFailed("TranslateCoordinates", h, 0, err)
	}
	return Point{X: geom.X, Y: geom.Y}, nil
}

func (b *LinuxBackend) ClientSize(h Handle) (Size, error) {
	conn, err := b.live(h)
	if err != nil {
		return Size{}, err
	}
	geom, err := conn.ClientGeometry(xproto.Window(h))
	if err != nil {
		return Size{}, CallFailed("GetGeometry", h, 0, err)
	}
	return Size{Width: geom.Width, Height: geom.Height}, nil
}

func (b *LinuxBackend) ProcessID(h Handle) (int, error) {
	conn, err := b.live(h)
	if err != nil {
		return 0, err
	}
	pid, err := conn.WindowPid(xproto.Window(h))
	if err != nil {
		return 0, CallFailed("_NET_WM_PID", h, 0, err)
	}
	return pid, nil
}

func (b *LinuxBackend) ProcessPath(pid int) (string, error) {
	return processExePath(pid)
}

func (b *LinuxBackend) Topmost(h Handle) (bool, error) {
	conn, err := b.live(h)
	if err != nil {
		return false, err
	}
	above, err := conn.IsAbove(xproto.Window(h))
	if err != nil {
		return false, CallFailed("_NET_WM_STATE", h, 0, err)
	}
	return above, nil
}

func (b *LinuxBackend) SetTopmost(h Handle, topmost bool) error {
	conn, err := b.live(h)
	if err != nil {
		return err
	}
	if err := conn.SetAbove(xproto.Window(h), topmost); err != nil {
		return CallFailed("_NET_WM_STATE", h, 0, err)
	}
	return nil
}

func (b *LinuxBackend) MoveResize(h Handle, bounds Rect) error {
	conn, err := b.live(h)
	if err != nil {
		return err
	}
	if err := conn.MoveResizeWindow(xproto.Window(h), bounds.X, bounds.Y, bounds.Width, bounds.Height); err != nil {
		return CallFailed("_NET_MOVERESIZE_WINDOW", h, 0, err)
	}
	return nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, CallFailed("x11", 0, 0, fmt.Errorf("x11 backend connection is nil"))
	}
	return b.conn, nil
}

// live returns the connection after confirming h is a live window.
func (b *LinuxBackend) live(h Handle) (*x11.Connection, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	if !fitsXID(h) || !conn.WindowExists(xproto.Window(h)) {
		return nil, WindowNotExist(h)
	}
	return conn, nil
}

// X11 window IDs are 29-bit values carried in 32 bits.
func fitsXID(h Handle) bool {
	return h != 0 && uint64(h) <= 0xFFFFFFFF
}
