package handlecache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultSweepInterval is used when SweeperConfig.Interval is not positive.
const DefaultSweepInterval = 30 * time.Second

// SweeperConfig holds configuration for the sweeper.
type SweeperConfig struct {
	Interval time.Duration
	Logger   zerolog.Logger
}

// Sweeper periodically prunes dead entries from a Cache so long-running
// processes do not carry handles of closed windows until the next lookup.
type Sweeper struct {
	interval time.Duration
	cache    *Cache
	logger   zerolog.Logger
}

// NewSweeper creates a sweeper for cache.
func NewSweeper(cache *Cache, cfg SweeperConfig) *Sweeper {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		interval: interval,
		cache:    cache,
		logger:   cfg.Logger,
	}
}

// Run starts the sweep loop. Blocks until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("cache sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("cache sweeper stopped")
			return
		case <-ticker.C:
			s.SweepNow()
		}
	}
}

// SweepNow runs one pass and returns the number of removed entries.
func (s *Sweeper) SweepNow() (removed int) {
	// A misbehaving liveness checker must not take the daemon down.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Msg("cache sweeper panic recovered")
			removed = 0
		}
	}()
	return s.cache.Prune()
}
