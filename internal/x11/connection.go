package x11

import (
	"fmt"
	"os"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnection connects to the X server named by display. An empty display
// is resolved with ResolveDisplayEnv.
func NewConnection(display string) (*Connection, error) {
	env, err := ResolveDisplayEnv(display)
	if err != nil {
		return nil, err
	}
	// xgb reads the authority file location from the environment.
	if env.XAuthority != "" && os.Getenv("XAUTHORITY") == "" {
		os.Setenv("XAUTHORITY", env.XAuthority)
	}

	xu, err := xgbutil.NewConnDisplay(env.Display)
	if err != nil {
		return nil, fmt.Errorf("display %s: %w", env.Display, err)
	}

	// EWMH helpers work off the root window; no extensions need explicit setup.
	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
