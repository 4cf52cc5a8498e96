package handlecache

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Stale     uint64 `json:"stale"`     // cached handles found dead during Resolve
	Evictions uint64 `json:"evictions"` // entries dropped for capacity
	Pruned    uint64 `json:"pruned"`    // dead entries removed by Prune
	Len       int    `json:"len"`
	Capacity  int    `json:"capacity"`
}

// HitRatio returns Hits / (Hits + Misses), or 0 before any lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// counters are guarded by the owning Cache's mutex.
type counters struct {
	hits, misses, stale, evictions, pruned uint64
}

func (c counters) snapshot(length, capacity int) Stats {
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Stale:     c.stale,
		Evictions: c.evictions,
		Pruned:    c.pruned,
		Len:       length,
		Capacity:  capacity,
	}
}
