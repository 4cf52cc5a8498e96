package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const stateAbove = "_NET_WM_STATE_ABOVE"

// Extents are per-edge margins around a window, in pixels.
type Extents struct {
	Left, Right, Top, Bottom int
}

// Geometry is a window rectangle in root coordinates.
type Geometry struct {
	X, Y, Width, Height int
}

// WindowExists reports whether windowID still refers to a window on the server.
func (c *Connection) WindowExists(windowID xproto.Window) bool {
	if windowID == 0 {
		return false
	}
	_, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	return err == nil
}

// FindWindow returns the topmost managed window whose WM_CLASS (class or
// instance) and title equal the given values. Empty arguments match any value.
func (c *Connection) FindWindow(class, title string) (xproto.Window, bool, error) {
	clients, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil || len(clients) == 0 {
		clients, err = ewmh.ClientListGet(c.XUtil)
		if err != nil {
			return 0, false, fmt.Errorf("failed to get client list: %w", err)
		}
	}

	// Stacking order is bottom-to-top; search from the top like a Z-order walk.
	for i := len(clients) - 1; i >= 0; i-- {
		win := clients[i]
		if title != "" && c.WindowTitle(win) != title {
			continue
		}
		if class != "" {
			wmClass, err := icccm.WmClassGet(c.XUtil, win)
			if err != nil || !classMatches(wmClass, class) {
				continue
			}
		}
		return win, true, nil
	}
	return 0, false, nil
}

// classMatches compares class against the class part of WM_CLASS only, the
// same value WindowClass reports.
func classMatches(wmClass *icccm.WmClass, class string) bool {
	return wmClass != nil && strings.TrimSpace(wmClass.Class) == class
}

// WindowClass returns the class part of WM_CLASS.
func (c *Connection) WindowClass(windowID xproto.Window) (string, error) {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(wmClass.Class), nil
}

// WindowTitle returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) WindowTitle(windowID xproto.Window) string {
	title, err := ewmh.WmNameGet(c.XUtil, windowID)
	if err == nil && title != "" {
		return title
	}
	title, err = icccm.WmNameGet(c.XUtil, windowID)
	if err == nil {
		return title
	}
	return ""
}

// ClientGeometry returns the client window rectangle translated to root coordinates.
func (c *Connection) ClientGeometry(windowID xproto.Window) (Geometry, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return Geometry{}, err
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// GetFrameExtents returns the WM decoration sizes, or zeros when the window
// manager does not publish _NET_FRAME_EXTENTS.
func (c *Connection) GetFrameExtents(windowID xproto.Window) Extents {
	extents, err := ewmh.FrameExtentsGet(c.XUtil, windowID)
	if err != nil {
		return Extents{}
	}
	return Extents{Left: extents.Left, Right: extents.Right, Top: extents.Top, Bottom: extents.Bottom}
}

// GetShadowExtents returns the client-side shadow margins advertised through
// _GTK_FRAME_EXTENTS, or zeros when absent.
func (c *Connection) GetShadowExtents(windowID xproto.Window) Extents {
	vals, err := xprop.PropValNums(xprop.GetProperty(c.XUtil, windowID, "_GTK_FRAME_EXTENTS"))
	if err != nil || len(vals) != 4 {
		return Extents{}
	}
	return Extents{Left: int(vals[0]), Right: int(vals[1]), Top: int(vals[2]), Bottom: int(vals[3])}
}

// WindowPid returns _NET_WM_PID.
func (c *Connection) WindowPid(windowID xproto.Window) (int, error) {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0, err
	}
	return int(pid), nil
}

// IsAbove reports whether _NET_WM_STATE_ABOVE is set.
func (c *Connection) IsAbove(windowID xproto.Window) (bool, error) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false, err
	}
	for _, state := range states {
		if state == stateAbove {
			return true, nil
		}
	}
	return false, nil
}

// SetAbove adds or removes _NET_WM_STATE_ABOVE through the window manager.
func (c *Connection) SetAbove(windowID xproto.Window, above bool) error {
	action := ewmh.StateRemove
	if above {
		action = ewmh.StateAdd
	}
	return ewmh.WmStateReq(c.XUtil, windowID, action, stateAbove)
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Maximized windows ignore move requests on most window managers.
	c.unmaximizeWindow(windowID)

	err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height)
	if err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state)
		}
	}
}

// GetActiveWindow returns _NET_ACTIVE_WINDOW.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW.
// The client message is built by hand because the xgbutil ewmh request
// helpers panic on this library version.
func (c *Connection) FocusWindow(windowID xproto.Window) error {
	atomReply, err := xproto.InternAtom(c.XUtil.Conn(), false,
		uint16(len("_NET_ACTIVE_WINDOW")), "_NET_ACTIVE_WINDOW").Reply()
	if err != nil {
		return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}

	const sourceIndication = 2 // pager/direct action
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atomReply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{sourceIndication, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}
