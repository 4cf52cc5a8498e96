package handlecache

import "github.com/1broseidon/winprobe/internal/platform"

// Getter is a handle cache owned by a single caller. It is unbounded and does
// no locking; sharing one Getter between goroutines requires external
// synchronization. Use Cache for a shared, bounded cache.
type Getter struct {
	finder  platform.Finder
	live    platform.LivenessChecker
	entries map[platform.Query]platform.Handle
}

// NewGetter returns an empty Getter.
func NewGetter(finder platform.Finder, live platform.LivenessChecker) *Getter {
	return &Getter{
		finder:  finder,
		live:    live,
		entries: make(map[platform.Query]platform.Handle),
	}
}

// Resolve follows the same policy as Cache.Resolve.
func (g *Getter) Resolve(class, title string) (platform.Handle, error) {
	q := platform.Query{Class: class, Title: title}
	if err := q.Validate(); err != nil {
		return 0, err
	}
	if h, ok := g.entries[q]; ok {
		if g.live.WindowExists(h) {
			return h, nil
		}
		delete(g.entries, q)
	}
	h, err := g.finder.FindWindow(class, title)
	if err != nil {
		return 0, err
	}
	g.entries[q] = h
	return h, nil
}

// Len returns the number of cached keys.
func (g *Getter) Len() int {
	return len(g.entries)
}
