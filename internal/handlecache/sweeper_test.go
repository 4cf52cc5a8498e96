package handlecache

import (
	"context"
	"testing"
	"time"

	"github.com/1broseidon/winprobe/internal/platform"
	"github.com/1broseidon/winprobe/internal/platform/platformtest"
)

type panickingChecker struct{}

func (panickingChecker) WindowExists(platform.Handle) bool { panic("boom") }

func TestSweeper_SweepNowRemovesDeadEntries(t *testing.T) {
	fake := platformtest.NewFake()
	dead := fake.Create(platformtest.FakeWindow{Title: "dead"})
	fake.Create(platformtest.FakeWindow{Title: "alive"})
	c := newTestCache(t, fake)

	for _, title := range []string{"dead", "alive"} {
		if _, err := c.Resolve("", title); err != nil {
			t.Fatalf("resolve %q: %v", title, err)
		}
	}
	fake.Destroy(dead)

	s := NewSweeper(c, SweeperConfig{})
	if removed := s.SweepNow(); removed != 1 {
		t.Fatalf("SweepNow() = %d, want 1", removed)
	}
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

func TestSweeper_RecoversFromPanic(t *testing.T) {
	fake := platformtest.NewFake()
	fake.Create(platformtest.FakeWindow{Title: "x"})

	// Populate using the real backend, then sweep with a checker that panics.
	c, err := New(fake, fake)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Resolve("", "x"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	c.live = panickingChecker{}

	s := NewSweeper(c, SweeperConfig{Interval: time.Hour})
	if removed := s.SweepNow(); removed != 0 {
		t.Fatalf("SweepNow() = %d after panic, want 0", removed)
	}

	// The mutex must have been released.
	c.live = fake
	if c.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", c.Len())
	}
}

func TestSweeper_RunPrunesUntilCancelled(t *testing.T) {
	fake := platformtest.NewFake()
	h := fake.Create(platformtest.FakeWindow{Title: "short-lived"})
	c := newTestCache(t, fake)
	if _, err := c.Resolve("", "short-lived"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	fake.Destroy(h)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s := NewSweeper(c, SweeperConfig{Interval: 5 * time.Millisecond})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for c.Len() != 0 {
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("sweeper did not prune dead entry")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestNewSweeper_DefaultInterval(t *testing.T) {
	fake := platformtest.NewFake()
	s := NewSweeper(newTestCache(t, fake), SweeperConfig{Interval: -1})
	if s.interval != DefaultSweepInterval {
		t.Fatalf("interval = %v, want %v", s.interval, DefaultSweepInterval)
	}
}
