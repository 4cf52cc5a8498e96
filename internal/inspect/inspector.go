// Package inspect combines a platform backend with a shared handle cache into
// the window operations exposed by the CLI, the daemon and the MCP server.
package inspect

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/1broseidon/winprobe/internal/handlecache"
	"github.com/1broseidon/winprobe/internal/platform"
)

// Inspector answers window queries. It is safe for concurrent use when the
// backend is.
type Inspector struct {
	backend platform.Backend
	cache   *handlecache.Cache
	logger  zerolog.Logger
}

// New returns an Inspector over backend. cache may be nil, in which case
// Resolve behaves like Find.
func New(backend platform.Backend, cache *handlecache.Cache, logger zerolog.Logger) *Inspector {
	return &Inspector{
		backend: backend,
		cache:   cache,
		logger:  logger.With().Str("component", "inspect").Logger(),
	}
}

// Backend returns the underlying platform backend.
func (i *Inspector) Backend() platform.Backend {
	return i.backend
}

// Resolve maps q to a live handle through the shared cache.
func (i *Inspector) Resolve(q platform.Query) (platform.Handle, error) {
	if i.cache == nil {
		return i.Find(q)
	}
	return i.cache.ResolveQuery(q)
}

// Find asks the backend directly, bypassing the cache.
func (i *Inspector) Find(q platform.Query) (platform.Handle, error) {
	if err := q.Validate(); err != nil {
		return 0, err
	}
	return i.backend.FindWindow(q.Class, q.Title)
}

// Info collects metadata and geometry for h. The process path is best effort:
// processes owned by other users often refuse to report it.
func (i *Inspector) Info(h platform.Handle) (platform.Window, error) {
	if !i.backend.WindowExists(h) {
		return platform.Window{}, platform.WindowNotExist(h)
	}

	w := platform.Window{Handle: h}
	var err error

	if w.Class, err = i.backend.ClassName(h); err != nil {
		return platform.Window{}, err
	}
	if w.Title, err = i.backend.Title(h); err != nil {
		return platform.Window{}, err
	}
	if w.Bounds, err = i.backend.WindowBounds(h); err != nil {
		return platform.Window{}, err
	}
	if w.FrameBounds, err = i.backend.FrameBounds(h); err != nil {
		return platform.Window{}, err
	}
	if w.Client, err = i.ClientRect(h); err != nil {
		return platform.Window{}, err
	}
	if w.Topmost, err = i.backend.Topmost(h); err != nil {
		return platform.Window{}, err
	}

	if pid, err := i.backend.ProcessID(h); err != nil {
		i.logger.Debug().Err(err).Stringer("handle", h).Msg("process id unavailable")
	} else {
		w.PID = pid
		if path, err := i.backend.ProcessPath(pid); err != nil {
			i.logger.Debug().Err(err).Int("pid", pid).Msg("process path unavailable")
		} else {
			w.ProcessPath = path
		}
	}

	w.Foreground = i.IsForeground(h)
	return w, nil
}

// InfoByQuery resolves q and returns Info for the result.
func (i *Inspector) InfoByQuery(q platform.Query) (platform.Window, error) {
	h, err := i.Resolve(q)
	if err != nil {
		return platform.Window{}, err
	}
	return i.Info(h)
}

// ClientRect returns the client area of h in screen coordinates.
func (i *Inspector) ClientRect(h platform.Handle) (platform.Rect, error) {
	origin, err := i.backend.ClientOrigin(h)
	if err != nil {
		return platform.Rect{}, err
	}
	size, err := i.backend.ClientSize(h)
	if err != nil {
		return platform.Rect{}, err
	}
	return platform.Rect{X: origin.X, Y: origin.Y, Width: size.Width, Height: size.Height}, nil
}

// Foreground returns the window that currently has input focus.
func (i *Inspector) Foreground() (platform.Handle, error) {
	return i.backend.ForegroundWindow()
}

// IsForeground reports whether h is the foreground window. Any failure to
// determine the foreground window counts as false.
func (i *Inspector) IsForeground(h platform.Handle) bool {
	fg, err := i.backend.ForegroundWindow()
	if err != nil {
		return false
	}
	return fg == h
}

// Focus brings h to the foreground.
func (i *Inspector) Focus(h platform.Handle) error {
	if err := i.backend.SetForeground(h); err != nil {
		return fmt.Errorf("failed to focus window %s: %w", h, err)
	}
	i.logger.Debug().Stringer("handle", h).Msg("focused window")
	return nil
}

// Move places h at bounds. Width and height must be positive.
func (i *Inspector) Move(h platform.Handle, bounds platform.Rect) error {
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return platform.InvalidArgument("move", fmt.Errorf("size must be positive, got %dx%d", bounds.Width, bounds.Height))
	}
	if err := i.backend.MoveResize(h, bounds); err != nil {
		return fmt.Errorf("failed to move window %s: %w", h, err)
	}
	i.logger.Debug().Stringer("handle", h).
		Int("x", bounds.X).Int("y", bounds.Y).
		Int("width", bounds.Width).Int("height", bounds.Height).
		Msg("moved window")
	return nil
}

// Topmost reports the always-on-top state of h.
func (i *Inspector) Topmost(h platform.Handle) (bool, error) {
	return i.backend.Topmost(h)
}

// SetTopmost sets or clears the always-on-top state of h.
func (i *Inspector) SetTopmost(h platform.Handle, topmost bool) error {
	if err := i.backend.SetTopmost(h, topmost); err != nil {
		return fmt.Errorf("failed to set topmost on window %s: %w", h, err)
	}
	return nil
}

// ToggleTopmost flips the always-on-top state of h and returns the new state.
func (i *Inspector) ToggleTopmost(h platform.Handle) (bool, error) {
	current, err := i.backend.Topmost(h)
	if err != nil {
		return false, err
	}
	if err := i.SetTopmost(h, !current); err != nil {
		return current, err
	}
	return !current, nil
}

// ErrNoCache is returned by cache operations on an Inspector built without one.
var ErrNoCache = errors.New("inspector has no handle cache")

// CacheStats returns the shared cache counters.
func (i *Inspector) CacheStats() (handlecache.Stats, error) {
	if i.cache == nil {
		return handlecache.Stats{}, ErrNoCache
	}
	return i.cache.Stats(), nil
}

// PruneCache drops dead entries from the shared cache.
func (i *Inspector) PruneCache() (int, error) {
	if i.cache == nil {
		return 0, ErrNoCache
	}
	return i.cache.Prune(), nil
}

// PurgeCache empties the shared cache.
func (i *Inspector) PurgeCache() error {
	if i.cache == nil {
		return ErrNoCache
	}
	i.cache.Purge()
	return nil
}
